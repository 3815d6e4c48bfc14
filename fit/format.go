package fit

import (
	"fmt"
	"math"
	"strings"
)

var separator = strings.Repeat("-", 50)

// Format renders a result the way the report panel shows it.
func Format(r Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s function:\n", r.Model.Name)
	fmt.Fprintf(&b, "Equation: %s\n", r.Equation)
	if math.IsNaN(r.RSquared) {
		b.WriteString("R² = undefined\n")
	} else {
		fmt.Fprintf(&b, "R² = %.6f (%.2f%%)\n", r.RSquared, r.RSquared*100)
	}
	fmt.Fprintf(&b, "Sum of squared errors = %.6f\n", r.SSE)
	fmt.Fprintf(&b, "Root mean squared error = %.6f\n", r.RMSE)
	fmt.Fprintf(&b, "Mean absolute error = %.6f\n", r.MAE)
	fmt.Fprintf(&b, "Fit quality: %s\n", r.Quality())
	b.WriteString(separator)
	b.WriteString("\n")
	return b.String()
}

// Report renders the best model followed by every model in rank order.
func Report(results []Result) string {
	var b strings.Builder
	best, ok := Best(results)
	if !ok {
		b.WriteString("No model could be fitted.\n")
		return b.String()
	}
	b.WriteString("* BEST MODEL *\n\n")
	b.WriteString(Format(best))
	b.WriteString("\nAll models (best to worst):\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "Place #%d:\n", i+1)
		b.WriteString(Format(r))
	}
	return b.String()
}
