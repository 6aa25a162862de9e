// Command sweepcore scans a directory tree and prints a disk-usage summary,
// optionally followed by duplicate-file and age-distribution reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"

	"sweepcore/internal/age"
	"sweepcore/internal/config"
	"sweepcore/internal/duplicates"
	"sweepcore/internal/fsmodel"
	"sweepcore/internal/pathutil"
	"sweepcore/internal/scanner"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func main() {
	base := config.DefaultConfig()
	if loaded, err := config.LoadConfig(); err == nil {
		base = loaded
	} else if !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, warnStyle.Render("sweepcore: config warning: "+err.Error()))
	}
	cfg := config.ParseFlags(base)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	scanCfg := cfg.ScannerConfig()
	scanCfg.Root = cfg.Path

	s := scanner.New()
	tree, err := s.Scan(ctx, scanCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sweepcore: scan failed:", err)
		os.Exit(1)
	}

	printScanSummary(tree)

	if cfg.RunDuplicates {
		finder := duplicates.New(cfg.DuplicatesConfig())
		report, err := finder.Find(ctx, tree)
		if err != nil {
			fmt.Fprintln(os.Stderr, warnStyle.Render("sweepcore: duplicate scan failed: "+err.Error()))
		} else {
			printDuplicateReport(report)
		}
	}

	if cfg.RunAge {
		analyzer := age.New(cfg.AgeConfig())
		report := analyzer.Analyze(tree)
		printAgeReport(report)
	}

	if err := config.SaveConfig(cfg); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("sweepcore: config save warning: "+err.Error()))
	}
}

func printScanSummary(tree *fsmodel.Tree) {
	stats := tree.Stats
	lines := []string{
		headingStyle.Render(tree.RootPath),
		fmt.Sprintf("%s total, %d files, %d dirs, %d symlinks",
			pathutil.FormatBytes(stats.TotalSize), stats.TotalFiles, stats.TotalDirs, stats.TotalSymlinks),
		dimStyle.Render(fmt.Sprintf("scanned in %s", tree.ScanTime.Round(time.Millisecond))),
	}
	if stats.LargestFile != nil {
		lines = append(lines, fmt.Sprintf("largest: %s (%s)", stats.LargestFile.Path, pathutil.FormatBytes(stats.LargestFile.Size)))
	}
	if len(tree.Warnings) > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d warnings during scan", len(tree.Warnings))))
	}

	children := append([]*fsmodel.Node(nil), tree.Root.Children...)
	sort.Slice(children, func(i, j int) bool { return children[i].Size > children[j].Size })
	for i, child := range children {
		if i >= 10 {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("... and %d more", len(children)-10)))
			break
		}
		lines = append(lines, fmt.Sprintf("  %-10s %s", pathutil.FormatBytes(child.Size), child.Name))
	}

	fmt.Println(panelStyle.Render(joinLines(lines)))
}

func printDuplicateReport(report duplicates.Report) {
	lines := []string{
		headingStyle.Render("Duplicates"),
		fmt.Sprintf("%d groups, %s wasted across %d files analyzed",
			report.GroupCount, pathutil.FormatBytes(report.TotalWastedSpace), report.FilesAnalyzed),
	}
	for i, group := range report.Groups {
		if i >= 10 {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("... and %d more groups", len(report.Groups)-10)))
			break
		}
		lines = append(lines, fmt.Sprintf("  %s wasted across %d copies of %s",
			pathutil.FormatBytes(group.WastedBytes), group.Count(), pathutil.FormatBytes(group.Size)))
	}
	fmt.Println(panelStyle.Render(joinLines(lines)))
}

func printAgeReport(report age.Report) {
	lines := []string{
		headingStyle.Render("Age distribution"),
		fmt.Sprintf("average age %s, median bucket %q", age.FormatAge(report.AverageAge), report.MedianAgeBucket),
	}
	for _, bucket := range report.Buckets {
		lines = append(lines, fmt.Sprintf("  %-12s %6d files  %s", bucket.Name, bucket.FileCount, pathutil.FormatBytes(bucket.TotalSize)))
	}
	if report.HasStaleDirectories() {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d stale directories, %s total",
			len(report.StaleDirectories), pathutil.FormatBytes(report.TotalStaleSize()))))
	}
	fmt.Println(panelStyle.Render(joinLines(lines)))
}

func joinLines(lines []string) string {
	out := lines[0]
	for _, line := range lines[1:] {
		out += "\n" + line
	}
	return out
}
