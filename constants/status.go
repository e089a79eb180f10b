package constants

// JobStatus is the canonical status for rows in extract_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusOK      JobStatus = "OK"      // every page produced a record
	JobStatusPartial JobStatus = "PARTIAL" // some pages failed
	JobStatusFailed  JobStatus = "FAILED"  // document-level failure
)

// DocumentKind selects which extraction pipeline a document goes through.
type DocumentKind string

const (
	KindFaktur     DocumentKind = "faktur"
	KindBuktiSetor DocumentKind = "bukti_setor"
)
