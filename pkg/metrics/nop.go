package metrics

// Nop is a no-op recorder for tests and tooling that runs without a
// metrics endpoint.
type Nop struct{}

func (Nop) RecordPostScanned()                            {}
func (Nop) RecordCommentScanned()                         {}
func (Nop) RecordMentions(string, int)                    {}
func (Nop) RecordSkip(string)                             {}
func (Nop) RecordStageDuration(string, float64)           {}
func (Nop) RecordHotSymbols(int)                          {}
