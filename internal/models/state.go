package models

// Step — шаг мастера создания плана.
type Step int

const (
	StepNone Step = iota
	StepAwaitingItem
	StepAwaitingCategory
	StepAwaitingWhen
)
