package model

// Cooperation is a supplier row from dm_cooperation as exposed by the
// filtered supplier listing (product02).
type Cooperation struct {
	CompanyName         string  `db:"company_name" json:"company_name"`
	CreditCode          string  `db:"credit_code" json:"credit_code"`
	MailAddress         *string `db:"mail_address" json:"mail_address"`
	LegalRepresentative *string `db:"legal_representative" json:"legal_representative"`
	Fax                 *string `db:"fax" json:"fax"`
	Website             *string `db:"website" json:"website"`
	ProductsType        *string `db:"products_type" json:"products_type"`
}

// CooperationDetail is the full dm_cooperation row returned by the exact
// company lookup (product01).
type CooperationDetail struct {
	CompanyName         string  `db:"company_name" json:"company_name"`
	CreditCode          string  `db:"credit_code" json:"credit_code"`
	MailAddress         *string `db:"mail_address" json:"mail_address"`
	LegalRepresentative *string `db:"legal_representative" json:"legal_representative"`
	Fax                 *string `db:"fax" json:"fax"`
	Website             *string `db:"website" json:"website"`
	ProductsType        *string `db:"products_type" json:"products_type"`
	StatisticalYear     *int    `db:"statistical_year" json:"statistical_year"`
	Province            *string `db:"province" json:"province"`
	TotalBidAmount      *string `db:"total_bid_amount" json:"total_bid_amount"`
	IsBlacklist         *bool   `db:"is_blacklist" json:"is_blacklist"`
}

// CooperationFilter holds the optional conjunctive filters for product02.
// Nil fields are omitted from the WHERE clause, not wildcarded.
type CooperationFilter struct {
	StatisticalYear *int    `json:"statistical_year"`
	Province        *string `json:"province"`
	TotalBidAmount  *string `json:"total_bid_amount"`
	IsBlacklist     *bool   `json:"is_blacklist"`
}

// Evaluation is the internal supplier evaluation row from
// dm_internal_evaluation (product03, full column set).
type Evaluation struct {
	Ename                 string   `db:"ename" json:"ename"`
	CreditCode            string   `db:"credit_code" json:"credit_code"`
	Rating                *string  `db:"rating" json:"rating"`
	Score                 *float64 `db:"score" json:"score"`
	BusinessScore         *float64 `db:"business_score" json:"business_score"`
	UndertakeScore        *float64 `db:"undertake_score" json:"undertake_score"`
	StabilityScore        *float64 `db:"stability_score" json:"stability_score"`
	PerformanceScore      *float64 `db:"performance_score" json:"performance_score"`
	RiskScore             *float64 `db:"risk_score" json:"risk_score"`
	CooperateCount        *int     `db:"cooperate_count" json:"cooperate_count"`
	BusinessScope         *string  `db:"business_scope" json:"business_scope"`
	CooperateAmountAvg3Y  *float64 `db:"cooperate_amount_avg_3y" json:"cooperate_amount_avg_3y"`
	CooperateAmount1Y     *float64 `db:"cooperate_amount_1y" json:"cooperate_amount_1y"`
	CooperatePeriod       *string  `db:"cooperate_period" json:"cooperate_period"`
	CooperateContinuity3Y *string  `db:"cooperate_continuity_3y" json:"cooperate_continuity_3y"`
	PerformanceAppraisal  *string  `db:"performance_appraisal" json:"performance_appraisal"`
	BadBehavior3Y         *string  `db:"bad_behavior_3y" json:"bad_behavior_3y"`
	MaliciousEvents1Y     *string  `db:"malicious_events_1y" json:"malicious_events_1y"`
	IsBlacklist           *bool    `db:"is_blacklist" json:"is_blacklist"`
}

// EvaluationScore is the reduced evaluation row exposed by product04.
type EvaluationScore struct {
	Ename                string   `db:"ename" json:"ename"`
	CreditCode           string   `db:"credit_code" json:"credit_code"`
	Score                *float64 `db:"score" json:"score"`
	Rating               *string  `db:"rating" json:"rating"`
	BusinessScore        *float64 `db:"business_score" json:"business_score"`
	UndertakeScore       *float64 `db:"undertake_score" json:"undertake_score"`
	StabilityScore       *float64 `db:"stability_score" json:"stability_score"`
	PerformanceScore     *float64 `db:"performance_score" json:"performance_score"`
	RiskScore            *float64 `db:"risk_score" json:"risk_score"`
	PerformanceAppraisal *string  `db:"performance_appraisal" json:"performance_appraisal"`
	BadBehavior3Y        *string  `db:"bad_behavior_3y" json:"bad_behavior_3y"`
	MaliciousEvents1Y    *string  `db:"malicious_events_1y" json:"malicious_events_1y"`
	IsBlacklist          *bool    `db:"is_blacklist" json:"is_blacklist"`
}
