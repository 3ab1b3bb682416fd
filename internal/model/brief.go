package model

import "time"

// Brief is the structured marketing input a generation batch starts from.
// The parser collaborator fills ParsedData exactly once; the pipeline only
// ever reads it.
type Brief struct {
	ID         string       `json:"id"`
	RawInput   string       `json:"rawInput"`
	ParsedData *ParsedBrief `json:"parsedData,omitempty"`
	Status     BriefStatus  `json:"status"`
	Error      *string      `json:"error,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ParsedBrief is the structured form extracted from the raw brief text.
type ParsedBrief struct {
	Hook              string   `json:"hook"`
	Persona           string   `json:"persona"`
	Emotion           string   `json:"emotion"`
	BRollTags         []string `json:"bRollTags"`
	TestimonialPoints []string `json:"testimonialPoints"`
}
