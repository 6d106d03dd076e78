package models

// Risk is a tracked project risk. Its score is derived, never stored.
type Risk struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Severity       Level      `json:"severity"`
	Probability    Level      `json:"probability"`
	Impact         Level      `json:"impact"`
	Status         RiskStatus `json:"status"`
	MitigationPlan string     `json:"mitigation_plan"`
	OwnerID        int64      `json:"owner_id"`
	CreatedAt      Timestamp  `json:"created_at"`
	UpdatedAt      Timestamp  `json:"updated_at"`
}

type RiskCreate struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Severity       Level      `json:"severity,omitempty"`
	Probability    Level      `json:"probability,omitempty"`
	Impact         Level      `json:"impact,omitempty"`
	Status         RiskStatus `json:"status,omitempty"`
	MitigationPlan string     `json:"mitigation_plan"`
}

func (r *RiskCreate) Validate() error {
	if r.Title == "" {
		return required("title")
	}
	if r.Severity == "" {
		r.Severity = LevelMedium
	}
	if r.Probability == "" {
		r.Probability = LevelMedium
	}
	if r.Impact == "" {
		r.Impact = LevelMedium
	}
	if r.Status == "" {
		r.Status = RiskStatusOpen
	}
	return validateRiskFields(&r.Severity, &r.Probability, &r.Impact, &r.Status)
}

type RiskUpdate struct {
	Title          *string     `json:"title,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Severity       *Level      `json:"severity,omitempty"`
	Probability    *Level      `json:"probability,omitempty"`
	Impact         *Level      `json:"impact,omitempty"`
	Status         *RiskStatus `json:"status,omitempty"`
	MitigationPlan *string     `json:"mitigation_plan,omitempty"`
}

func (r *RiskUpdate) Validate() error {
	if r.Title != nil && *r.Title == "" {
		return required("title")
	}
	return validateRiskFields(r.Severity, r.Probability, r.Impact, r.Status)
}

// validateRiskFields normalizes the non-nil fields in place before checking them.
func validateRiskFields(severity, probability, impact *Level, status *RiskStatus) error {
	for _, l := range []*Level{severity, probability, impact} {
		if l != nil {
			*l = ParseLevel(string(*l))
		}
	}
	if status != nil {
		*status = ParseRiskStatus(string(*status))
	}
	if severity != nil && !severity.Valid() {
		return invalid("severity", string(*severity))
	}
	if probability != nil && !probability.ValidProbability() {
		return invalid("probability", string(*probability))
	}
	if impact != nil && !impact.Valid() {
		return invalid("impact", string(*impact))
	}
	if status != nil && !status.Valid() {
		return invalid("status", string(*status))
	}
	return nil
}
