package models

// SourceRow is a row read from the authoritative dashboard data for one
// subject. ActionFlag equal to constants.SendEmailFlag marks eligibility.
type SourceRow struct {
	LoginID       string `json:"login_id"`
	Name          string `json:"name"`
	TriggerNumber string `json:"trigger_number"`
	Email         string `json:"email"`
	ActionFlag    string `json:"action_flag"`
}

func (r SourceRow) Key() Key {
	return NewKey(r.LoginID, r.TriggerNumber)
}

// RosterEntry is one student in the companion roster table, used to resolve
// emails for re-surfaced issues when the dashboard row carries none.
type RosterEntry struct {
	LoginID string `json:"login_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}
