// Package capability defines the narrow interfaces the pipeline consumes for
// every external collaborator. Concrete providers implement these and are
// injected at wiring time, so the orchestrator never resolves a provider on
// its own and tests can substitute doubles.
package capability

import (
	"context"
	"io"

	"github.com/reelbrief/api/internal/model"
)

// ScriptBatch is the result of one batched script call: TargetCount variants
// plus the token usage for the whole call.
type ScriptBatch struct {
	Variants         []string
	PromptTokens     int64
	CompletionTokens int64
}

// ScriptProvider generates all script variants for a parsed brief in a
// single call.
type ScriptProvider interface {
	Name() string
	Generate(ctx context.Context, brief *model.ParsedBrief, count int) (*ScriptBatch, error)
}

// AvatarArtifact is a synthesized avatar clip plus its duration signal,
// which drives duration-based cost logging.
type AvatarArtifact struct {
	URL             string
	DurationSeconds float64
}

// AvatarProvider synthesizes a talking-avatar clip from a script.
type AvatarProvider interface {
	Name() string
	Generate(ctx context.Context, script string) (*AvatarArtifact, error)
}

// Clip is one b-roll clip selected by tag.
type Clip struct {
	URL             string
	Tag             string
	DurationSeconds float64
}

// Composition is a fully rendered video buffer ready for upload.
type Composition struct {
	Buffer          []byte
	ContentType     string
	DurationSeconds float64
}

// VideoComposer renders the avatar footage together with b-roll into the
// final video.
type VideoComposer interface {
	Name() string
	Compose(ctx context.Context, artifact *AvatarArtifact, clips []Clip) (*Composition, error)
}

// BRollSource fetches b-roll clips by tag. It is best-effort: a miss yields
// a smaller or empty clip set, never an error.
type BRollSource interface {
	Fetch(ctx context.Context, tags []string) []Clip
}

// Storage uploads a rendered buffer to durable storage and returns its
// public URL.
type Storage interface {
	Name() string
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// BriefParser turns raw brief text into its structured form. Owned outside
// the pipeline; the pipeline only reads the stored result.
type BriefParser interface {
	Parse(ctx context.Context, rawInput string) (*model.ParsedBrief, error)
}

// Capabilities bundles every provider the pipeline needs for one run.
type Capabilities struct {
	Script   ScriptProvider
	Avatar   AvatarProvider
	Composer VideoComposer
	BRoll    BRollSource
	Storage  Storage
}
