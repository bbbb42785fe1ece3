package dto

// CountryName holds the two name forms the countries endpoint returns.
type CountryName struct {
	Common   string `json:"common"`
	Official string `json:"official"`
}

// CountryResponse is one record of the reference list endpoint. The remote
// payload carries no identifier; a local one is generated at persist time.
type CountryResponse struct {
	Name CountryName `json:"name"`
	Flag string      `json:"flag"`
}

// SolutionResponse is the owned solution of a quiz record.
type SolutionResponse struct {
	ContentType string `json:"contentType"`
	ContentData string `json:"contentData"`
}

// QuizResponse is one record of the content list endpoint. CorrectOption is
// 1-based on the wire and normalized exactly once during mapping.
type QuizResponse struct {
	UUID          *string            `json:"uuid"`
	QuestionType  string             `json:"questionType"`
	Question      string             `json:"question"`
	Option1       string             `json:"option1"`
	Option2       string             `json:"option2"`
	Option3       string             `json:"option3"`
	Option4       string             `json:"option4"`
	CorrectOption int                `json:"correctOption"`
	Sort          int                `json:"sort"`
	Solution      []SolutionResponse `json:"solution"`
}
