package models

type OutcomeKind int

const (
	OutcomeEmpty OutcomeKind = iota
	OutcomePartial
	OutcomeComplete
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmpty:
		return "empty"
	case OutcomePartial:
		return "partial"
	case OutcomeComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// DownloadOutcome is the terminal value of a manifest download.
// Archive is nil for OutcomeEmpty.
type DownloadOutcome struct {
	Kind     OutcomeKind
	Archive  []byte
	FileName string
	Fetched  int
	Missing  []string
}

func EmptyOutcome(missing []string) DownloadOutcome {
	return DownloadOutcome{Kind: OutcomeEmpty, Missing: missing}
}

func PartialOutcome(archive []byte, fileName string, fetched int, missing []string) DownloadOutcome {
	return DownloadOutcome{Kind: OutcomePartial, Archive: archive, FileName: fileName, Fetched: fetched, Missing: missing}
}

func CompleteOutcome(archive []byte, fileName string, fetched int) DownloadOutcome {
	return DownloadOutcome{Kind: OutcomeComplete, Archive: archive, FileName: fileName, Fetched: fetched}
}

// DownloadResult summarizes a download for CLI output.
type DownloadResult struct {
	Outcome          string   `json:"outcome"`
	LocalPath        string   `json:"local_path,omitempty"`
	FetchedFiles     int      `json:"fetched_files"`
	MissingFiles     []string `json:"missing_files,omitempty"`
	TotalSizeBytes   int64    `json:"total_size_bytes"`
	TotalSizeHuman   string   `json:"total_size_human"`
	OperationTime    string   `json:"operation_time"`
	DownloadDuration string   `json:"download_duration"`
}
