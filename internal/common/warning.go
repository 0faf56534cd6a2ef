package common

// Warning describes a recoverable rule correction that was applied
// automatically (for example a discount clamped to its ceiling). Warnings are
// returned alongside results so the caller can surface them; they never block
// the operation that produced them.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Warnings is a convenience collection with append helpers.
type Warnings []Warning

// Add appends a warning with the given code and message.
func (w *Warnings) Add(code, message string) {
	*w = append(*w, Warning{Code: code, Message: message})
}

// Merge appends all warnings from other.
func (w *Warnings) Merge(other []Warning) {
	*w = append(*w, other...)
}
