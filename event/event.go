package event

import (
	"net/http"
	"net/url"
	"time"

	"github.com/mwantia/imagestore/data"
)

// Topics the core attaches handlers to. Resources trigger them by name;
// anything may attach additional listeners before the service opens.
const (
	TopicImagesLoad           = "db.images.load"
	TopicImageAdded           = "db.image.added"
	TopicImageRemoved         = "db.image.removed"
	TopicImageMetadataUpdated = "db.image.metadata.updated"
)

// Event is the shared mutable context passed through one dispatch cycle.
// Handlers communicate by mutating its fields; it lives for a single request
// and is never reused.
type Event struct {
	// Name of the topic currently being dispatched.
	Name string

	Request  *Request
	Response *Response

	// Query built by the resource for listing topics.
	Query *data.Query

	// Identifier of the record a mutation topic refers to.
	Identifier string
}

// Request carries the inbound parameters the resource recognizes.
type Request struct {
	Params url.Values
}

// Response is the in-progress reply handlers populate.
type Response struct {
	Headers http.Header

	// Ordered listing body.
	Images []*data.ImageRecord

	// Freshness marker of the returned set, set by the store handler.
	LastModified time.Time
}

// NewEvent creates a fresh dispatch context for the given request parameters.
func NewEvent(params url.Values) *Event {
	if params == nil {
		params = make(url.Values)
	}

	return &Event{
		Request: &Request{
			Params: params,
		},
		Response: &Response{
			Headers: make(http.Header),
		},
	}
}

// ClearBody drops the response body while leaving headers intact.
// Used by head-style requests after the full listing flow ran.
func (r *Response) ClearBody() {
	r.Images = nil
}
