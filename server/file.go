package server

import (
	"github.com/secwire/secwire/comm"
)

// Files is a reference server exposing a tiny in-memory file store with
// per-path discretionary access control. The creator of a path owns it and
// may grant other users access.
type Files struct {
	*Server
	files  map[string][]byte
	owners map[string]string
	grants map[string]map[string]bool // path -> user -> allowed
}

// NewFiles creates a file server listening as name.
func NewFiles(name string, channel *comm.Channel) *Files {
	f := &Files{
		files:  make(map[string][]byte),
		owners: make(map[string]string),
		grants: make(map[string]map[string]bool),
	}
	f.Server = New(name, channel, f)
	f.AddHandler("read", f.read, true)
	f.AddHandler("write", f.write, true)
	f.AddHandler("grant", f.grant, true)
	return f
}

// Register accepts every sender; the file server's policy lives in
// authorization.
func (f *Files) Register(sender string, body map[string]any) bool {
	return true
}

// Authenticate accepts every sender.
func (f *Files) Authenticate(sender string, body map[string]any) bool {
	return true
}

// Authorize allows access to unclaimed paths, to paths the sender owns, and
// to paths the owner granted them.
func (f *Files) Authorize(sender string, body map[string]any) bool {
	path, ok := body["path"].(string)
	if !ok {
		return false
	}
	owner, claimed := f.owners[path]
	if !claimed || owner == sender {
		return true
	}
	return f.grants[path][sender]
}

func (f *Files) read(sender string, body map[string]any) map[string]any {
	path := body["path"].(string)
	data, ok := f.files[path]
	if !ok {
		return map[string]any{"status": "not found"}
	}
	return map[string]any{"status": "success", "data": data}
}

// write appends to the path, claiming it for the sender if new. A true
// overwrite flag replaces the contents instead.
func (f *Files) write(sender string, body map[string]any) map[string]any {
	path := body["path"].(string)
	data, ok := bodyBytes(body["data"])
	if !ok {
		return map[string]any{"status": "error"}
	}
	if _, claimed := f.owners[path]; !claimed {
		f.owners[path] = sender
	}
	if overwrite, _ := body["overwrite"].(bool); overwrite {
		f.files[path] = data
	} else {
		f.files[path] = append(f.files[path], data...)
	}
	return map[string]any{"status": "success"}
}

// grant lets a path's owner share access with another user.
func (f *Files) grant(sender string, body map[string]any) map[string]any {
	path := body["path"].(string)
	user, ok := body["user"].(string)
	if !ok {
		return map[string]any{"status": "error"}
	}
	if f.owners[path] != sender {
		return map[string]any{"status": "authorization failure"}
	}
	if f.grants[path] == nil {
		f.grants[path] = make(map[string]bool)
	}
	f.grants[path][user] = true
	return map[string]any{"status": "success"}
}

// bodyBytes coerces a decoded body value into bytes. JSON round-tripping
// yields []byte for _b64 fields and string for text.
func bodyBytes(v any) ([]byte, bool) {
	switch data := v.(type) {
	case []byte:
		return data, true
	case string:
		return []byte(data), true
	default:
		return nil, false
	}
}
