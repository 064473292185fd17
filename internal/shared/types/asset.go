package types

import (
	"sync"

	"github.com/bytedance/sonic"
)

// Publisher makes asset payloads reachable by reference
type Publisher interface {
	Publish(name, mime string, data []byte) (string, error)
	Revoke(ref string)
}

// Asset is a media file bundled in the project's assets folder.
// The asset owns its payload; its reference is created on first use
// and stays valid until Revoke.
type Asset struct {
	Name string
	Type string
	MIME string
	Size int64

	data      []byte
	publisher Publisher

	mu  sync.Mutex
	ref string
}

// NewAsset creates an asset record owning data
func NewAsset(name, typ, mime string, data []byte, publisher Publisher) *Asset {
	return &Asset{
		Name:      name,
		Type:      typ,
		MIME:      mime,
		Size:      int64(len(data)),
		data:      data,
		publisher: publisher,
	}
}

// Data returns the asset payload
func (a *Asset) Data() []byte {
	return a.data
}

// Reference returns the asset's accessible reference, publishing it on first call
func (a *Asset) Reference() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ref != "" {
		return a.ref, nil
	}
	if a.publisher == nil {
		return "", nil
	}

	ref, err := a.publisher.Publish(a.Name, a.MIME, a.data)
	if err != nil {
		return "", err
	}
	a.ref = ref
	return ref, nil
}

// Revoke releases the reference. A later Reference call publishes a new one.
func (a *Asset) Revoke() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ref == "" {
		return
	}
	if a.publisher != nil {
		a.publisher.Revoke(a.ref)
	}
	a.ref = ""
}

// Published reports the current reference without creating one
func (a *Asset) Published() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ref
}

// MarshalJSON encodes asset metadata; the payload is never inlined
func (a *Asset) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(struct {
		Name      string `json:"name"`
		Type      string `json:"type"`
		MIME      string `json:"mime"`
		Size      int64  `json:"size"`
		Reference string `json:"reference,omitempty"`
	}{
		Name:      a.Name,
		Type:      a.Type,
		MIME:      a.MIME,
		Size:      a.Size,
		Reference: a.Published(),
	})
}
