// Package models defines the domain types for coursebook.
package models

// Level groups modules by difficulty.
type Level string

// Known levels, in recommended order.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels lists every known level in recommended order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// Module is one lesson unit: a theory document plus its examples,
// exercises and solutions.
type Module struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Ordinal     int            `json:"ordinal"`
	Level       Level          `json:"level"`
	Dir         string         `json:"dir"`
	Tags        []string       `json:"tags,omitempty"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Theory      string         `json:"theory"`
	Examples    []Example      `json:"examples"`
	Exercises   []Exercise     `json:"exercises"`
	Solutions   []Solution     `json:"solutions"`
	Checksum    string         `json:"checksum"`
}

// Example is an illustrative snippet belonging to exactly one module.
type Example struct {
	Name           string `json:"name"`
	Path           string `json:"path"`
	Language       string `json:"language,omitempty"`
	Code           string `json:"code"`
	ExpectedOutput string `json:"expected_output,omitempty"`
}

// Exercise is a prompt belonging to exactly one module.
type Exercise struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Prompt   string `json:"prompt"`
	Solution string `json:"solution,omitempty"` // name of the paired Solution, if any
}

// Solution is a worked answer stored next to a module's exercises.
type Solution struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}
