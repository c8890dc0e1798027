package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripCodeFences removes an outer markdown code block (```json ... ``` or
// plain ``` ... ```) around model output.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.IndexByte(s, '\n'); idx >= 0 {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// SmartParse extracts structured data from model output, trying strategies
// in order of strictness:
//  1. Standard JSON parse
//  2. JSON repair (unquoted keys, trailing commas, single quotes)
//  3. Hjson parse (most lenient)
//
// Code fences are stripped first. Model output is adversarial input; every
// strategy failing is an expected condition, not a bug.
func SmartParse(input string, schema interface{}) error {
	input = StripCodeFences(input)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if err := hjson.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	return fmt.Errorf("all parsing strategies failed for model output")
}
