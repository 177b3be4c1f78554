package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Settings mirrors the server-held configuration record. There is exactly one
// record, identified by ID.
type Settings struct {
	ID                                    int64  `json:"id" yaml:"id"`
	DefaultPersonalSubmissionQuota        int    `json:"default_personal_submission_quota" yaml:"default_personal_submission_quota"`
	DefaultPersonalSubmissionIntervalMins int    `json:"default_personal_submission_interval_mins" yaml:"default_personal_submission_interval_mins"`
	GlobalQuota                           int    `json:"global_quota" yaml:"global_quota"`
	TumorTypes                            string `json:"tumor_types" yaml:"tumor_types"`
	Sources                               string `json:"sources" yaml:"sources"`
	CSVRequiredColumns                    string `json:"csv_required_columns" yaml:"csv_required_columns"`
	RunnerJobTimeoutMins                  int    `json:"runner_job_timeout_mins" yaml:"runner_job_timeout_mins"`
	MaxFilesizeH5MB                       int    `json:"max_filesize_h5_mb" yaml:"max_filesize_h5_mb"`
	MaxFilesizeCSVMB                      int    `json:"max_filesize_csv_mb" yaml:"max_filesize_csv_mb"`
	AboutMD                               string `json:"about_md" yaml:"about_md"`
	NewsItems                             string `json:"news_items" yaml:"news_items"`
}

// NewsItem is one entry of the serialized news list.
type NewsItem struct {
	Text string `json:"text" yaml:"text"`
	URL  string `json:"url" yaml:"url"`
}

// listSeparator separates entries of list-valued settings.
const listSeparator = ";"

// TumorTypeList returns the allowed tumor types.
func (s Settings) TumorTypeList() []string {
	return splitList(s.TumorTypes)
}

// SourceList returns the allowed sample sources.
func (s Settings) SourceList() []string {
	return splitList(s.Sources)
}

// RequiredColumnList returns the column names every submitted CSV must contain.
func (s Settings) RequiredColumnList() []string {
	return splitList(s.CSVRequiredColumns)
}

// News decodes the serialized news list. An empty string yields no items.
func (s Settings) News() ([]NewsItem, error) {
	if strings.TrimSpace(s.NewsItems) == "" {
		return []NewsItem{}, nil
	}

	var items []NewsItem
	if err := json.Unmarshal([]byte(s.NewsItems), &items); err != nil {
		return nil, fmt.Errorf("decode news items: %w", err)
	}
	return items, nil
}

func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, listSeparator) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
