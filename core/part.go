package core

// Content is one role-attributed message: a conversation role ("user",
// "assistant", "tool", "system") plus an ordered list of parts.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is one segment of a Content value. The isPart marker keeps the set of
// part types closed to this package.
type Part interface{ isPart() }

// TextPart carries plain UTF-8 text.
type TextPart struct {
	Text     string
	Metadata map[string]any
}

func (TextPart) isPart() {}

// FunctionCall is a request to invoke a named tool, with its arguments
// serialized as JSON. The ID ties the eventual response back to this call.
type FunctionCall struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// FunctionCallPart wraps a FunctionCall as a content part.
type FunctionCallPart struct {
	FunctionCall FunctionCall
	Metadata     map[string]any
}

func (FunctionCallPart) isPart() {}

// FunctionResponse is the outcome of one tool call. Exactly one of Response
// and Error is meaningful; Error is set when the call failed.
type FunctionResponse struct {
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"name"`
	Response interface{} `json:"response,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// FunctionResponsePart wraps a FunctionResponse as a content part.
type FunctionResponsePart struct {
	FunctionResponse FunctionResponse
	Metadata         map[string]any
}

func (FunctionResponsePart) isPart() {}

// DataPart carries structured key/value data.
type DataPart struct {
	Data     map[string]any
	Metadata map[string]any
}

func (DataPart) isPart() {}

// FilePart references a file attachment, inlined or by URI.
type FilePart struct {
	File     FilePartFile
	Metadata map[string]any
}

func (FilePart) isPart() {}

// FilePartFile holds the attachment itself: base64 bytes when inlined, or a
// URI when the content lives elsewhere.
type FilePartFile struct {
	Bytes    string
	MimeType *string
	Name     *string
	URI      string
}
