package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/terraconstructs/articles/internal/auth"
	"github.com/terraconstructs/articles/internal/repository"
)

// OwnerSource selects where the owner ids of a resource come from.
type OwnerSource int

const (
	// SourceNone means the rule has no strategy for this case.
	SourceNone OwnerSource = iota
	// SourceSelfPath uses the path id itself as the only owner.
	SourceSelfPath
	// SourceAuthorshipLookup reads the current authors of the article named by the path id.
	SourceAuthorshipLookup
	// SourceSingleOwnerLookup reads the author of the review named by the path id.
	SourceSingleOwnerLookup
	// SourceBodyList decodes an array of ids from a body field.
	SourceBodyList
	// SourceBodySingleton decodes one id from a body field.
	SourceBodySingleton
)

func (s OwnerSource) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceSelfPath:
		return "self-path"
	case SourceAuthorshipLookup:
		return "existing-authorship-lookup"
	case SourceSingleOwnerLookup:
		return "existing-single-owner-lookup"
	case SourceBodyList:
		return "body-list"
	case SourceBodySingleton:
		return "body-singleton"
	default:
		return "OwnerSource(" + strconv.Itoa(int(s)) + ")"
	}
}

// maxOwnershipBody bounds how much of a request body the resolver buffers.
const maxOwnershipBody = 1 << 20

// OwnershipRule is fixed at route registration. Existing applies when the
// path carries an id; Body applies when it does not.
type OwnershipRule struct {
	PathParam string
	Existing  OwnerSource
	Body      OwnerSource
	BodyField string
}

var (
	// SelfOwnership lets users edit only their own account.
	SelfOwnership = OwnershipRule{PathParam: "id", Existing: SourceSelfPath}
	// ArticleOwnership checks stored authorship on update and delete, and
	// the declared authorIds on create.
	ArticleOwnership = OwnershipRule{PathParam: "id", Existing: SourceAuthorshipLookup, Body: SourceBodyList, BodyField: "authorIds"}
	// ReviewOwnership checks the stored author on delete, and the declared
	// authorId on create.
	ReviewOwnership = OwnershipRule{PathParam: "id", Existing: SourceSingleOwnerLookup, Body: SourceBodySingleton, BodyField: "authorId"}
)

// Validate rejects rules that can never resolve.
func (o OwnershipRule) Validate() error {
	if o.Existing == SourceNone && o.Body == SourceNone {
		return errors.New("ownership rule needs a path or body strategy")
	}
	switch o.Existing {
	case SourceNone, SourceSelfPath, SourceAuthorshipLookup, SourceSingleOwnerLookup:
	default:
		return fmt.Errorf("ownership rule: %s is not a path strategy", o.Existing)
	}
	if o.Existing != SourceNone && o.PathParam == "" {
		return errors.New("ownership rule: path strategy requires PathParam")
	}
	switch o.Body {
	case SourceNone:
	case SourceBodyList, SourceBodySingleton:
		if o.BodyField == "" {
			return errors.New("ownership rule: body strategy requires BodyField")
		}
	default:
		return fmt.Errorf("ownership rule: %s is not a body strategy", o.Body)
	}
	return nil
}

// OwnerResolver produces the owner-id set of the resource a request targets.
type OwnerResolver struct {
	Authorship AuthorshipLookup
	Reviews    ReviewLookup
}

// Resolve applies rule to r. A path id takes precedence over the body, so
// the body is only read for create requests. When the body is read it is
// restored so the handler can decode it again.
//
// Errors the client could cause by omitting or mangling the id are
// *auth.ConfigurationError. Bodies that are too large, or that spell the
// owner field in more than one letter case, are *auth.MalformedRequestError.
// Lookup failures are returned as-is.
func (o OwnerResolver) Resolve(w http.ResponseWriter, r *http.Request, rule OwnershipRule) ([]int64, error) {
	if rule.Existing != SourceNone {
		if raw := chi.URLParam(r, rule.PathParam); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, &auth.ConfigurationError{Msg: fmt.Sprintf("path parameter %q is not an id", rule.PathParam), Err: err}
			}
			return o.fromExisting(r, rule.Existing, id)
		}
	}

	if rule.Body == SourceNone {
		return nil, &auth.ConfigurationError{Msg: fmt.Sprintf("path parameter %q is missing", rule.PathParam)}
	}
	return fromBody(w, r, rule)
}

func (o OwnerResolver) fromExisting(r *http.Request, source OwnerSource, id int64) ([]int64, error) {
	switch source {
	case SourceSelfPath:
		return []int64{id}, nil

	case SourceAuthorshipLookup:
		if o.Authorship == nil {
			return nil, &auth.ConfigurationError{Msg: "authorship lookup not configured"}
		}
		ids, err := o.Authorship.AuthorIDs(r.Context(), id)
		if err != nil {
			return nil, fmt.Errorf("lookup authors of article %d: %w", id, err)
		}
		return ids, nil

	case SourceSingleOwnerLookup:
		if o.Reviews == nil {
			return nil, &auth.ConfigurationError{Msg: "review lookup not configured"}
		}
		review, err := o.Reviews.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return []int64{}, nil
			}
			return nil, fmt.Errorf("lookup review %d: %w", id, err)
		}
		return review.OwnerIDs(), nil

	default:
		return nil, &auth.ConfigurationError{Msg: "unsupported path strategy " + source.String()}
	}
}

func fromBody(w http.ResponseWriter, r *http.Request, rule OwnershipRule) ([]int64, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, &auth.ConfigurationError{Msg: "request body is empty"}
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxOwnershipBody))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &auth.MalformedRequestError{Msg: "request body too large", Err: err}
		}
		return nil, &auth.ConfigurationError{Msg: "read request body", Err: err}
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, &auth.ConfigurationError{Msg: "decode request body", Err: err}
	}

	// Handlers decode into structs, where encoding/json matches keys without
	// regard to case and the last match wins. Any case variant of the owner
	// field could therefore override the value checked here.
	for key := range payload {
		if key != rule.BodyField && strings.EqualFold(key, rule.BodyField) {
			return nil, &auth.MalformedRequestError{Msg: fmt.Sprintf("body field %q is ambiguous with %q", key, rule.BodyField)}
		}
	}

	value, ok := payload[rule.BodyField]
	if !ok || value == nil {
		return nil, &auth.ConfigurationError{Msg: fmt.Sprintf("body field %q is missing", rule.BodyField)}
	}

	switch rule.Body {
	case SourceBodyList:
		var ids []int64
		if err := mapstructure.Decode(value, &ids); err != nil {
			return nil, &auth.ConfigurationError{Msg: fmt.Sprintf("body field %q is not a list of ids", rule.BodyField), Err: err}
		}
		if ids == nil {
			ids = []int64{}
		}
		return ids, nil

	case SourceBodySingleton:
		var id int64
		if err := mapstructure.Decode(value, &id); err != nil {
			return nil, &auth.ConfigurationError{Msg: fmt.Sprintf("body field %q is not an id", rule.BodyField), Err: err}
		}
		return []int64{id}, nil

	default:
		return nil, &auth.ConfigurationError{Msg: "unsupported body strategy " + rule.Body.String()}
	}
}
