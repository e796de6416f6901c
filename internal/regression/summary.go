package regression

import (
	"fmt"
	"math"
	"strings"
)

const summaryWidth = 78

// Text renders the result as a fixed-width summary table.
func (r *Result) Text() string {
	var b strings.Builder
	rule := strings.Repeat("=", summaryWidth)
	thin := strings.Repeat("-", summaryWidth)

	title := "OLS Regression Results"
	pad := (summaryWidth - len(title)) / 2
	b.WriteString(strings.Repeat(" ", pad) + title + "\n")
	b.WriteString(rule + "\n")

	left := [][2]string{
		{"Model Name:", r.ModelName},
		{"Dep. Variable:", r.DependentVar},
		{"Model:", "OLS"},
		{"Method:", "Least Squares"},
		{"No. Observations:", fmt.Sprintf("%d", r.NObs)},
		{"Df Residuals:", formatCount(r.DfResid)},
		{"Df Model:", formatCount(r.DfModel)},
		{"Covariance Type:", r.CovType},
	}
	right := [][2]string{
		{"", ""},
		{"R-squared:", formatStat(r.RSquared, 3)},
		{"Adj. R-squared:", formatStat(r.AdjRSquared, 3)},
		{"F-statistic:", formatStat(r.FStatistic, 4)},
		{"Prob (F-statistic):", formatProb(r.FPValue)},
		{"Log-Likelihood:", formatStat(r.LogLikelihood, 2)},
		{"AIC:", formatStat(r.AIC, 1)},
		{"BIC:", formatStat(r.BIC, 1)},
	}
	for i := range left {
		b.WriteString(fmt.Sprintf("%-18s%20s   %-20s%17s\n", left[i][0], left[i][1], right[i][0], right[i][1]))
	}
	b.WriteString(rule + "\n")

	nameWidth := 16
	for _, term := range r.Terms {
		if len(term) > nameWidth {
			nameWidth = len(term)
		}
	}
	b.WriteString(fmt.Sprintf("%-*s %10s %10s %10s %10s %11s %11s\n", nameWidth, "", "coef", "std err", "z", "P>|z|", "[0.025", "0.975]"))
	b.WriteString(thin + "\n")
	for i, term := range r.Terms {
		b.WriteString(fmt.Sprintf("%-*s %10.4f %10.3f %10.3f %10.3f %11.3f %11.3f\n",
			nameWidth, term, r.Params[i], r.StdErrors[i], r.ZValues[i], r.PValues[i], r.ConfLower[i], r.ConfUpper[i]))
	}
	b.WriteString(rule + "\n")

	b.WriteString("Notes:\n")
	b.WriteString(fmt.Sprintf("[1] Standard Errors are heteroscedasticity robust (%s)\n", r.CovType))
	if r.Rank < len(r.Terms) {
		b.WriteString(fmt.Sprintf("[2] The design matrix has rank %d for %d columns; coefficients are minimum-norm\n", r.Rank, len(r.Terms)))
	}
	if dropped := r.DroppedMissingLabel + r.DroppedMissing; dropped > 0 {
		b.WriteString(fmt.Sprintf("[3] %d rows with missing values were excluded\n", dropped))
	}
	return b.String()
}

// LaTeX renders the result as a pair of tabular environments.
func (r *Result) LaTeX() string {
	var b strings.Builder

	b.WriteString("\\begin{center}\n")
	b.WriteString("\\begin{tabular}{lclc}\n")
	b.WriteString("\\toprule\n")
	rows := [][4]string{
		{"Dep. Variable:", latexEscape(r.DependentVar), "R-squared:", formatStat(r.RSquared, 3)},
		{"Model:", "OLS", "Adj. R-squared:", formatStat(r.AdjRSquared, 3)},
		{"Method:", "Least Squares", "F-statistic:", formatStat(r.FStatistic, 4)},
		{"No. Observations:", fmt.Sprintf("%d", r.NObs), "Prob (F-statistic):", formatProb(r.FPValue)},
		{"Df Residuals:", formatCount(r.DfResid), "Log-Likelihood:", formatStat(r.LogLikelihood, 2)},
		{"Df Model:", formatCount(r.DfModel), "AIC:", formatStat(r.AIC, 1)},
		{"Covariance Type:", r.CovType, "BIC:", formatStat(r.BIC, 1)},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("\\textbf{%s} & %s & \\textbf{%s} & %s \\\\\n", row[0], row[1], row[2], row[3]))
	}
	b.WriteString("\\bottomrule\n")
	b.WriteString("\\end{tabular}\n")

	b.WriteString("\\begin{tabular}{lcccccc}\n")
	b.WriteString("                & \\textbf{coef} & \\textbf{std err} & \\textbf{z} & \\textbf{P$> |$z$|$} & \\textbf{[0.025} & \\textbf{0.975]}  \\\\\n")
	b.WriteString("\\midrule\n")
	for i, term := range r.Terms {
		b.WriteString(fmt.Sprintf("\\textbf{%s} & %10.4f & %10.3f & %10.3f & %10.3f & %10.3f & %10.3f \\\\\n",
			latexEscape(term), r.Params[i], r.StdErrors[i], r.ZValues[i], r.PValues[i], r.ConfLower[i], r.ConfUpper[i]))
	}
	b.WriteString("\\bottomrule\n")
	b.WriteString("\\end{tabular}\n")
	b.WriteString(fmt.Sprintf("%%\\caption{%s}\n", latexEscape(r.ModelName)))
	b.WriteString("\\end{center}\n\n")
	b.WriteString(fmt.Sprintf("Notes: \\newline\n [1] Standard Errors are heteroscedasticity robust (%s)\n", r.CovType))
	return b.String()
}

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`_`, `\_`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`$`, `\$`,
)

func latexEscape(s string) string {
	return latexReplacer.Replace(s)
}

func formatStat(v float64, digits int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.*f", digits, v)
}

func formatProb(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2e", v)
}

func formatCount(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
