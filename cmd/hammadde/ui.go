package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/model"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
)

func printBanner() {
	fmt.Println("==========================================")
	headerColor.Println("  Hammadde - 门店原料用量对账")
	fmt.Println("==========================================")
}

func successf(format string, args ...interface{}) {
	successColor.Printf("✓ "+format+"\n", args...)
}

func warnf(format string, args ...interface{}) {
	warnColor.Printf("⚠ "+format+"\n", args...)
}

func errorf(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}

func infof(format string, args ...interface{}) {
	infoColor.Printf("ℹ "+format+"\n", args...)
}

// printSummaries 门店汇总表；缺货多的门店标红，供货过多标黄
func printSummaries(w io.Writer, summaries []model.BranchSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := []string{"Şube", "Kalem", "Eksik", "Fazla", "Yakın", "Eksik (gr)", "Fazla (gr)"}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	sep := make([]string, len(headers))
	for i, h := range headers {
		sep[i] = strings.Repeat("-", len([]rune(h)))
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	for _, s := range summaries {
		branch := s.Branch
		switch {
		case s.DeficitCount > s.SurplusCount:
			branch = errorColor.Sprint(branch)
		case s.SurplusCount > 0:
			branch = warnColor.Sprint(branch)
		default:
			branch = successColor.Sprint(branch)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%.2f\t%.2f\n",
			branch, s.TotalItemsAnalyzed, s.DeficitCount, s.SurplusCount, s.NearMatchCount,
			s.TotalDeficitGr, s.TotalSurplusGr)
	}
	_ = tw.Flush()
}
