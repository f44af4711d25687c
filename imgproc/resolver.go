package imgproc

import (
	"github.com/apex/log"

	"civic-reports-service/attachments"
)

// Uploader hands normalized image bytes to the storage collaborator and
// returns the URI they become reachable under.
type Uploader func(name string, data []byte) (string, error)

// Resolver normalizes candidate images before upload. It satisfies
// attachments.Resolver.
type Resolver struct {
	upload Uploader
}

func NewResolver(upload Uploader) Resolver {
	return Resolver{upload: upload}
}

func (r Resolver) Resolve(c attachments.Candidate) (string, error) {
	data, err := Normalize(c.Data)
	if err != nil {
		// Store the original rather than losing the attachment.
		log.Warnf("Normalization of %q failed, storing original: %v", c.Name, err)
		data = c.Data
	}
	return r.upload(c.Name, data)
}
