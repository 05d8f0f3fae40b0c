package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// legacyDeprecateVerb is the older singular spelling some repositories use
// for the artifact-level deprecation marker. Accepted on read only (spec.md
// §9 open question); the codec never writes it.
const legacyDeprecateVerb = "deprecate"
const deprecateVerb = "deprecated"

// annotationSentinel marks an annotation tag riding on a version or stage
// tag's name. The spec names `annotation` as an Event kind but never gives
// it its own grammar (§4.7 gap, see DESIGN.md); '^' does not appear in any
// grammar spec.md does define, so it can't collide with them.
const annotationSentinel = '^'

// ParseTag classifies a tag name into an Event using the single-pass,
// sentinel-driven grammar of spec.md §4.1. It returns (event, true) on a
// structural match and (zero, false) for anything else — unrecognized
// tags are not errors, they are simply foreign and ignored by the
// Collector.
func ParseTag(name string) (Event, bool) {
	atIdx := strings.IndexByte(name, '@')
	hashIdx := strings.IndexByte(name, '#')

	switch {
	case atIdx == -1 && hashIdx == -1:
		return Event{}, false
	case atIdx != -1 && (hashIdx == -1 || atIdx < hashIdx):
		return parseVersionGrammar(name, atIdx)
	default:
		return parseStageGrammar(name, hashIdx)
	}
}

func parseVersionGrammar(name string, atIdx int) (Event, bool) {
	artifact := name[:atIdx]
	rest := name[atIdx+1:]
	if !ValidArtifactName(artifact) || rest == "" {
		return Event{}, false
	}

	if rest == deprecateVerb || rest == legacyDeprecateVerb {
		return Event{Kind: KindDeprecation, Artifact: artifact, Ref: name, Seq: 0, SimpleForm: true}, true
	}
	if seq, ok := matchSeqSuffix(rest, deprecateVerb); ok {
		return Event{Kind: KindDeprecation, Artifact: artifact, Ref: name, Seq: seq}, true
	}
	if seq, ok := matchSeqSuffix(rest, legacyDeprecateVerb); ok {
		return Event{Kind: KindDeprecation, Artifact: artifact, Ref: name, Seq: seq}, true
	}

	deregister := strings.HasSuffix(rest, "!")
	base := strings.TrimSuffix(rest, "!")

	if idx := strings.IndexByte(base, annotationSentinel); idx != -1 && !deregister {
		version := base[:idx]
		seqStr := base[idx+1:]
		n, err := strconv.Atoi(seqStr)
		if version == "" || err != nil || seqStr == "" || strings.ContainsAny(version, "#@!") {
			return Event{}, false
		}
		return Event{Kind: KindAnnotation, Artifact: artifact, Version: version, Ref: name, Seq: n}, true
	}

	if base == "" || strings.ContainsAny(base, "#@") {
		return Event{}, false
	}

	kind := KindRegistration
	if deregister {
		kind = KindDeregistration
	}
	return Event{Kind: kind, Artifact: artifact, Version: base, Ref: name}, true
}

// matchSeqSuffix matches "<prefix>#<seq>" exactly, returning the numeric seq.
func matchSeqSuffix(rest, prefix string) (seq int, ok bool) {
	if !strings.HasPrefix(rest, prefix+"#") {
		return 0, false
	}
	seqStr := rest[len(prefix)+1:]
	n, err := strconv.Atoi(seqStr)
	if err != nil || seqStr == "" || strings.ContainsAny(seqStr, "#@") {
		return 0, false
	}
	return n, true
}

func parseStageGrammar(name string, hashIdx int) (Event, bool) {
	artifact := name[:hashIdx]
	rest := name[hashIdx+1:]
	if !ValidArtifactName(artifact) || rest == "" || strings.Contains(rest, "@") {
		return Event{}, false
	}

	parts := strings.SplitN(rest, "#", 2)
	first := parts[0]

	if idx := strings.IndexByte(first, annotationSentinel); idx != -1 {
		if len(parts) == 2 {
			return Event{}, false // caret and "#seq" both present: ambiguous, reject
		}
		stage := first[:idx]
		seqStr := first[idx+1:]
		n, err := strconv.Atoi(seqStr)
		if stage == "" || err != nil || seqStr == "" || strings.ContainsAny(stage, "!#@") {
			return Event{}, false
		}
		return Event{Kind: KindAnnotation, Artifact: artifact, Stage: stage, Ref: name, Seq: n}, true
	}

	unassign := strings.HasSuffix(first, "!")
	stage := strings.TrimSuffix(first, "!")
	if stage == "" {
		return Event{}, false
	}

	var seq int
	simple := true
	if len(parts) == 2 {
		seqStr := parts[1]
		n, err := strconv.Atoi(seqStr)
		if err != nil || seqStr == "" {
			return Event{}, false
		}
		seq = n
		simple = false
	}

	kind := KindAssignment
	if unassign {
		kind = KindUnassignment
	}
	return Event{Kind: kind, Artifact: artifact, Stage: stage, Ref: name, Seq: seq, SimpleForm: simple}, true
}

// FormatTag is the inverse of ParseTag: it renders the tag name for an
// Event produced by the Mutator. When incremental is true the seq is
// embedded; the Mutator requests incremental form for every assignment
// and unassignment, and for a deprecation only when its seq is above 1
// (spec.md §4.1, §9 "simple vs incremental"). Annotation tags always carry their seq,
// since they have no simple form to fall back to.
func FormatTag(e Event, incremental bool) (string, error) {
	if !ValidArtifactName(e.Artifact) {
		return "", ValidationError(e.Artifact, "invalid artifact name")
	}

	switch e.Kind {
	case KindRegistration:
		if e.Version == "" {
			return "", ValidationError(e.Version, "registration event requires a version")
		}
		return fmt.Sprintf("%s@%s", e.Artifact, e.Version), nil
	case KindDeregistration:
		if e.Version == "" {
			return "", ValidationError(e.Version, "deregistration event requires a version")
		}
		return fmt.Sprintf("%s@%s!", e.Artifact, e.Version), nil
	case KindDeprecation:
		if incremental && e.Seq > 0 {
			return fmt.Sprintf("%s@%s#%d", e.Artifact, deprecateVerb, e.Seq), nil
		}
		return fmt.Sprintf("%s@%s", e.Artifact, deprecateVerb), nil
	case KindAssignment:
		if e.Stage == "" {
			return "", ValidationError(e.Stage, "assignment event requires a stage")
		}
		if incremental {
			return fmt.Sprintf("%s#%s#%d", e.Artifact, e.Stage, e.Seq), nil
		}
		return fmt.Sprintf("%s#%s", e.Artifact, e.Stage), nil
	case KindUnassignment:
		if e.Stage == "" {
			return "", ValidationError(e.Stage, "unassignment event requires a stage")
		}
		if incremental {
			return fmt.Sprintf("%s#%s!#%d", e.Artifact, e.Stage, e.Seq), nil
		}
		return fmt.Sprintf("%s#%s!", e.Artifact, e.Stage), nil
	case KindAnnotation:
		if e.Version != "" {
			return fmt.Sprintf("%s@%s%c%d", e.Artifact, e.Version, annotationSentinel, e.Seq), nil
		}
		if e.Stage != "" {
			return fmt.Sprintf("%s#%s%c%d", e.Artifact, e.Stage, annotationSentinel, e.Seq), nil
		}
		return "", ValidationError("", "annotation event requires a version or stage")
	default:
		return "", ValidationError(string(e.Kind), "event kind has no tag representation")
	}
}
