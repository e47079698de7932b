package models

// CognitiveBias names a bias detected in the user's reasoning
type CognitiveBias struct {
	Bias        string `json:"bias"`
	Explanation string `json:"explanation"`
}

// QuestionFeedback echoes one answered question with the coach's feedback.
// The report carries one entry per answered question, in question order.
type QuestionFeedback struct {
	QuestionText string `json:"questionText"`
	UserAnswer   string `json:"userAnswer"`
	AIFeedback   string `json:"aiFeedback"`
}

// ChartPoint is a single name/value pair for the report charts
type ChartPoint struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Reference is a suggested external resource
type Reference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SuggestedResources holds research keywords and reference links
type SuggestedResources struct {
	Keywords   []string    `json:"keywords"`
	References []Reference `json:"references"`
}

// AnalysisReport is the structured performance report produced once per
// session by the AI gateway. Immutable after creation.
type AnalysisReport struct {
	OverallScore          int                `json:"overallScore"`
	Strengths             []string           `json:"strengths"`
	Weaknesses            []string           `json:"weaknesses"`
	Optimizations         []string           `json:"optimizations"`
	ResponseSpeedAnalysis string             `json:"responseSpeedAnalysis"`
	CognitiveBiases       []CognitiveBias    `json:"cognitiveBiases"`
	QuestionBreakdown     []QuestionFeedback `json:"questionBreakdown"`
	PerformanceData       []ChartPoint       `json:"performanceData"`
	DecisionMakingData    []ChartPoint       `json:"decisionMakingData"`
	SuggestedResources    SuggestedResources `json:"suggestedResources"`
}

// HighScoreThreshold is the overall score at or above which the "High Scorer"
// notification fires.
const HighScoreThreshold = 90
