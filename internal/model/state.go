package model

// GridState is what the bot keeps per chat between updates.
type GridState struct {
	Request GridRequest `json:"request"`
}

// FormState is a create-person dialog in progress.
type FormState struct {
	Draft   PersonDraft     `json:"draft"`
	Touched map[string]bool `json:"touched"`
	Step    string          `json:"step"`
}
