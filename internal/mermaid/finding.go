package mermaid

// Code identifies the rule that produced a Finding.
type Code string

const (
	// MMD001 indicates a node label containing a markdown list was replaced wholesale.
	MMD001 Code = "MMD001"
	// MMD002 indicates a markdown link or bare URL inside a node label was replaced.
	MMD002 Code = "MMD002"
	// MMD003 indicates a node whose label was lost during export now displays its own identifier.
	MMD003 Code = "MMD003"
	// MMD004 indicates a branch label was moved from a pass-through edge onto a decision edge.
	MMD004 Code = "MMD004"
	// MMD005 indicates a sequence participant name was given a safe alias.
	MMD005 Code = "MMD005"
	// MMW001 is a warning indicating a misplaced branch label was left in place because no unique decision edge matched.
	MMW001 Code = "MMW001"
	// MMW002 is a warning indicating two participant names produced the same alias and one was suffixed.
	MMW002 Code = "MMW002"
	// MMW003 is a warning indicating a diagram fence was still open at end of input.
	MMW003 Code = "MMW003"
)

// Severity classifies a Finding.
type Severity string

const (
	// SeverityInfo marks a repair that was applied.
	SeverityInfo Severity = "info"
	// SeverityWarning marks a condition left unrepaired or repaired with a guess.
	SeverityWarning Severity = "warning"
)

// Finding records one change made, or declined, while sanitizing a diagram.
type Finding struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Line     int      `json:"line"` // 1-based; relative to the block or the document
	Message  string   `json:"message"`
}

func info(code Code, line int, msg string) Finding {
	return Finding{Code: code, Severity: SeverityInfo, Line: line, Message: msg}
}

func warn(code Code, line int, msg string) Finding {
	return Finding{Code: code, Severity: SeverityWarning, Line: line, Message: msg}
}
