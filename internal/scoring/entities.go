package scoring

import (
	"regexp"

	"github.com/spigell/job-tracker/internal/skills"
)

// UnknownOrganization is reported when no organisation-like name is found.
const UnknownOrganization = "Unknown"

var organizationPattern = regexp.MustCompile(
	`\b(?:[A-Z][A-Za-z0-9&'-]*\s+){1,4}(?:Inc|LLC|Ltd|Corp|Corporation|GmbH|Labs|Technologies|Technology|Group|Software|Systems)\b`,
)

// Entities are the named things detected in a posting description.
type Entities struct {
	Organization string
	Skills       []string
}

// DetectEntities finds the organisation-like name (the last one mentioned) and
// the vocabulary terms that occur in text.
func DetectEntities(text string, vocabulary *skills.Vocabulary) Entities {
	entities := Entities{Organization: UnknownOrganization}
	if matches := organizationPattern.FindAllString(text, -1); len(matches) > 0 {
		entities.Organization = matches[len(matches)-1]
	}
	if vocabulary != nil {
		entities.Skills = vocabulary.Find(text)
	}
	return entities
}

// SkillMatches counts detected skills that also belong to the résumé skill set.
func (e Entities) SkillMatches(resume skills.Set) int {
	count := 0
	for _, skill := range e.Skills {
		if resume.Contains(skill) {
			count++
		}
	}
	return count
}
