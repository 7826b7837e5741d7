package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlshape/internal/cli/output"
	"github.com/leapstack-labs/sqlshape/internal/group"
	"github.com/leapstack-labs/sqlshape/pkg/shape"
)

// signatureFields writes each clause of sig as a labeled field.
func signatureFields(r *output.Renderer, sig shape.Signature) {
	r.Field("From", output.FormatList(sig.FromTables))
	r.Field("Join", output.FormatList(sig.JoinTables))
	r.Field("Where", orDash(sig.WhereCondition))
	r.Field("Group By", output.FormatList(sig.GroupBy))
	r.Field("Order By", output.FormatList(sig.OrderBy))
}

// signatureCells returns sig as table cells in column order.
func signatureCells(sig shape.Signature) []string {
	return []string{
		output.FormatList(sig.FromTables),
		output.FormatList(sig.JoinTables),
		orDash(sig.WhereCondition),
		output.FormatList(sig.GroupBy),
		output.FormatList(sig.OrderBy),
	}
}

var signatureHeader = []string{"From", "Join", "Where", "Group By", "Order By"}

// memberLines writes up to limit members of a family; limit 0 writes none.
func memberLines(r *output.Renderer, members []group.Statement, limit int) {
	if limit <= 0 || len(members) == 0 {
		return
	}
	shown := members
	if len(shown) > limit {
		shown = shown[:limit]
	}
	for _, m := range shown {
		line := fmt.Sprintf("%d: %s", m.Line, m.SQL)
		if r.EffectiveMode() == output.ModeText {
			r.Println("    " + r.Styles().Muted.Render(line))
		} else {
			r.Println("  - `" + strings.ReplaceAll(line, "`", "'") + "`")
		}
	}
	if rest := len(members) - len(shown); rest > 0 {
		more := fmt.Sprintf("... and %d more", rest)
		if r.EffectiveMode() == output.ModeText {
			r.Println("    " + r.Styles().Muted.Render(more))
		} else {
			r.Println("  - " + more)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
