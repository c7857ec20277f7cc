package model

// SearchStrategy is the per-run search configuration, usually produced by an
// external CV-analysis step and handed to the aggregator as a file.
type SearchStrategy struct {
	RoleKeywords    []string `yaml:"role_keywords" json:"role_keywords"`
	SkillKeywords   []string `yaml:"skill_keywords" json:"skill_keywords"`
	TargetLocations []string `yaml:"target_locations" json:"target_locations"`
	IsRemote        *bool    `yaml:"is_remote" json:"is_remote"`
	JobType         string   `yaml:"job_type" json:"job_type"`
	HoursOld        int      `yaml:"hours_old" json:"hours_old"`
	ResultsWanted   int      `yaml:"results_wanted" json:"results_wanted"`
}

const (
	DefaultHoursOld      = 72
	DefaultResultsWanted = 30
	DefaultJobType       = "fulltime"
)

// WithDefaults returns a copy with absent options filled in. Empty keyword
// sets stay empty: an empty gate accepts everything.
func (s SearchStrategy) WithDefaults() SearchStrategy {
	if len(s.TargetLocations) == 0 {
		s.TargetLocations = []string{"Remote"}
	}
	if s.IsRemote == nil {
		remote := true
		s.IsRemote = &remote
	}
	if s.JobType == "" {
		s.JobType = DefaultJobType
	}
	if s.HoursOld <= 0 {
		s.HoursOld = DefaultHoursOld
	}
	if s.ResultsWanted <= 0 {
		s.ResultsWanted = DefaultResultsWanted
	}
	return s
}

// Remote reports the is_remote option, defaulting to true.
func (s SearchStrategy) Remote() bool {
	return s.IsRemote == nil || *s.IsRemote
}
