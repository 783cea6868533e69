package forum

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/inna-tuzhikova/hasker/internal/apperrors"
)

const (
	MaxTagsPerQuestion = 3
	MaxTagLength       = 20
)

// ParseTagList splits a comma separated tag list, trimming blanks and collapsing duplicates.
// At least one tag is required; every tag must be non-empty and at most MaxTagLength runes.
func ParseTagList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.Validation("at least one tag is required").WithContext("field", "tags")
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0, MaxTagsPerQuestion)
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			return nil, apperrors.Validation("tags must not be empty").WithContext("field", "tags")
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, apperrors.Validation(
				fmt.Sprintf("tag %q is longer than %d characters", tag, MaxTagLength),
			).WithContext("field", "tags")
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	if len(tags) > MaxTagsPerQuestion {
		return nil, apperrors.Validation(
			fmt.Sprintf("at most %d tags are allowed", MaxTagsPerQuestion),
		).WithContext("field", "tags")
	}
	return tags, nil
}
