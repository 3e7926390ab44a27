package salons

// Onboarding stages in pipeline order. A salon can only move forward one
// stage at a time, and only once every checklist item of its current stage
// is done. CLOSED is reachable from any stage via a direct update.
const (
	StageApproach        = "APPROACH"
	StageOwnerReady      = "OWNER_READY"
	StageUnderActivation = "UNDER_ACTIVATION"
	StageActivated       = "ACTIVATED"
	StageClosed          = "CLOSED"
)

// stageOrder is the forward pipeline.
var stageOrder = []string{
	StageApproach,
	StageOwnerReady,
	StageUnderActivation,
	StageActivated,
	StageClosed,
}

// stageChecklists lists what must be done before leaving each stage.
var stageChecklists = map[string][]string{
	StageApproach:        {"address_filled", "owner_details_filled", "services_filled"},
	StageOwnerReady:      {"stylists_added", "photos_uploaded", "owner_account_activated"},
	StageUnderActivation: {"product_demo", "branding_material_sent", "display_ready", "app_training_given"},
	StageActivated:       {},
	StageClosed:          {},
}

// checklistLabels maps item keys to the labels shown in the console.
var checklistLabels = map[string]string{
	"address_filled":          "Address filled",
	"owner_details_filled":    "Owner name & phone filled",
	"services_filled":         "Services offered filled",
	"stylists_added":          "Stylist details added on app",
	"photos_uploaded":         "Salon photos & details uploaded",
	"owner_account_activated": "Owner account activated",
	"product_demo":            "Product demo completed",
	"branding_material_sent":  "Branding material sent",
	"display_ready":           "Display ready",
	"app_training_given":      "App downloaded & training given to stylists",
}

// ValidStage reports whether s is a known stage.
func ValidStage(s string) bool {
	for _, stage := range stageOrder {
		if stage == s {
			return true
		}
	}
	return false
}

// StageChecklist returns the checklist item keys for a stage.
func StageChecklist(stage string) []string {
	return stageChecklists[stage]
}

// ChecklistLabel returns the console label for a checklist item key.
func ChecklistLabel(key string) string {
	if label, ok := checklistLabels[key]; ok {
		return label
	}
	return key
}

// nextStage returns the stage after s in the pipeline, or "" when s is
// terminal or unknown.
func nextStage(s string) string {
	for i, stage := range stageOrder {
		if stage == s && i+1 < len(stageOrder) {
			return stageOrder[i+1]
		}
	}
	return ""
}

// checklistComplete reports whether every item of the stage is checked.
func checklistComplete(stage string, checklist map[string]bool) bool {
	items := stageChecklists[stage]
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !checklist[item] {
			return false
		}
	}
	return true
}
