// internal/models/stage.go
package models

type Stage string

const (
	StageOpenCoding        Stage = "open_coding"
	StageAxialCoding       Stage = "axial_coding"
	StageSelectiveCoding   Stage = "selective_coding"
	StageTheoryIntegration Stage = "theory_integration"
)

// Stages lists the workflow stages in execution order.
func Stages() []Stage {
	return []Stage{StageOpenCoding, StageAxialCoding, StageSelectiveCoding, StageTheoryIntegration}
}
