package types

// UploadResult is the summary carried by the final upload event, or the whole
// body of a non-streaming upload response.
type UploadResult struct {
	Message string          `json:"message"`
	Files   []UploadedFile  `json:"files"`
	Errors  []UploadFailure `json:"errors,omitempty"`
}

// UploadedFile is one successfully processed file.
type UploadedFile struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Size     int64  `json:"size"`
}

// UploadFailure is one file the backend could not process.
type UploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// UploadProgress is the typed view of a status event. Every field is
// optional on the wire.
type UploadProgress struct {
	File    string
	Index   int
	Total   int
	Stage   string
	Percent float64
	Extra   map[string]any
}

// ProgressFromPayload builds an UploadProgress from a decoded status payload.
// Unknown keys are kept in Extra.
func ProgressFromPayload(data map[string]any) UploadProgress {
	p := UploadProgress{}
	for k, v := range data {
		switch k {
		case "file", "filename":
			p.File, _ = v.(string)
		case "index":
			p.Index = IntFromAny(v)
		case "total":
			p.Total = IntFromAny(v)
		case "stage":
			p.Stage, _ = v.(string)
		case "pct", "percent", "progress":
			p.Percent = FloatFromAny(v)
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]any)
			}
			p.Extra[k] = v
		}
	}
	if p.Percent == 0 && p.Total > 0 && p.Index > 0 {
		p.Percent = float64(p.Index) * 100 / float64(p.Total)
	}
	return p
}
