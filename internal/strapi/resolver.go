package strapi

import (
	"fmt"
	"strings"
)

// Candidate is one (credential mode, endpoint path) pair of a fallback plan.
type Candidate struct {
	Mode CredentialMode
	Path string
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s [%s]", c.Path, c.Mode)
}

// FallbackPlan is the ordered list of candidates attempted for one logical
// operation, consumed left to right, stopping at the first success.
type FallbackPlan struct {
	Op         string
	Candidates []Candidate
}

// Paths returns the candidate paths in plan order, for diagnostics.
func (p FallbackPlan) Paths() []string {
	paths := make([]string, len(p.Candidates))
	for i, c := range p.Candidates {
		paths[i] = c.Path
	}
	return paths
}

// EndpointResolver builds fallback plans for logical operations. Plans are
// deterministic: identical inputs and configuration always produce an
// identical candidate order, which keeps fallback behavior testable.
type EndpointResolver struct {
	adminConfigured bool
	tokenConfigured bool
}

// NewEndpointResolver builds a resolver for the configured credential modes.
func NewEndpointResolver(adminConfigured, tokenConfigured bool) *EndpointResolver {
	return &EndpointResolver{
		adminConfigured: adminConfigured,
		tokenConfigured: tokenConfigured,
	}
}

// collectionNames derives the public API path segments to try for a content
// type UID such as "api::article.article". The admin API always uses the
// full UID; the public API uses the collection name, whose exact casing
// depends on how the type was created, so case variants are probed in a
// fixed order.
func collectionNames(uid string) []string {
	name := uid
	if idx := strings.LastIndex(uid, "."); idx >= 0 {
		name = uid[idx+1:]
	}

	variants := []string{name, strings.ToLower(name), kebabCase(name)}

	// Types created through the builder usually expose pluralized paths.
	if !strings.HasSuffix(strings.ToLower(name), "s") {
		variants = append(variants, strings.ToLower(name)+"s")
	}

	seen := make(map[string]bool, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func kebabCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveCollection builds the plan for collection-level operations (list,
// create): the admin content-manager endpoint first when an admin session is
// possible, then the public API case variants.
func (r *EndpointResolver) ResolveCollection(uid string) FallbackPlan {
	plan := FallbackPlan{Op: "collection " + uid}

	if r.adminConfigured {
		plan.Candidates = append(plan.Candidates, Candidate{
			Mode: ModeAdminSession,
			Path: "/content-manager/collection-types/" + uid,
		})
	}

	publicMode := ModeAPIToken
	if !r.tokenConfigured {
		publicMode = ModeAnonymous
	}
	for _, name := range collectionNames(uid) {
		plan.Candidates = append(plan.Candidates, Candidate{
			Mode: publicMode,
			Path: "/api/" + name,
		})
	}
	return plan
}

// ResolveEntry builds the plan for entry-level operations by appending the
// id segment to every collection-level candidate.
func (r *EndpointResolver) ResolveEntry(uid, id string) FallbackPlan {
	base := r.ResolveCollection(uid)
	plan := FallbackPlan{Op: fmt.Sprintf("entry %s/%s", uid, id)}
	for _, c := range base.Candidates {
		plan.Candidates = append(plan.Candidates, Candidate{
			Mode: c.Mode,
			Path: c.Path + "/" + id,
		})
	}
	return plan
}

// ResolvePublish builds the plan for publish/unpublish. The admin
// content-manager exposes a dedicated action endpoint; the public API
// fallback is a plain entry update (the request builder switches the body to
// a publishedAt write for public candidates).
func (r *EndpointResolver) ResolvePublish(uid, id string, publish bool) FallbackPlan {
	action := "publish"
	if !publish {
		action = "unpublish"
	}
	plan := FallbackPlan{Op: fmt.Sprintf("%s %s/%s", action, uid, id)}

	if r.adminConfigured {
		plan.Candidates = append(plan.Candidates, Candidate{
			Mode: ModeAdminSession,
			Path: fmt.Sprintf("/content-manager/collection-types/%s/%s/actions/%s", uid, id, action),
		})
	}
	if r.tokenConfigured {
		for _, name := range collectionNames(uid) {
			plan.Candidates = append(plan.Candidates, Candidate{
				Mode: ModeAPIToken,
				Path: fmt.Sprintf("/api/%s/%s", name, id),
			})
		}
	}
	return plan
}

// ResolveSchema builds the plan for content-type-builder operations. Only
// the admin session can reach the builder, so with no admin credentials the
// caller fails fast with a configuration error instead of probing.
func (r *EndpointResolver) ResolveSchema(path string) (FallbackPlan, error) {
	if !r.adminConfigured {
		return FallbackPlan{}, opError(KindConfiguration, "schema "+path,
			"admin credentials required: set STRAPI_ADMIN_EMAIL and STRAPI_ADMIN_PASSWORD")
	}
	return FallbackPlan{
		Op: "schema " + path,
		Candidates: []Candidate{
			{Mode: ModeAdminSession, Path: path},
		},
	}, nil
}

// ResolveUpload builds the plan for media uploads: admin upload endpoint
// first, then the public upload endpoint.
func (r *EndpointResolver) ResolveUpload() FallbackPlan {
	plan := FallbackPlan{Op: "upload"}
	if r.adminConfigured {
		plan.Candidates = append(plan.Candidates, Candidate{Mode: ModeAdminSession, Path: "/upload"})
	}
	if r.tokenConfigured {
		plan.Candidates = append(plan.Candidates, Candidate{Mode: ModeAPIToken, Path: "/api/upload"})
	}
	return plan
}

// ResolveRaw builds a single-candidate plan for the raw REST escape hatch.
// Paths under /api/ use the API token; anything else needs the admin
// session.
func (r *EndpointResolver) ResolveRaw(path string) (FallbackPlan, error) {
	plan := FallbackPlan{Op: "rest " + path}
	if strings.HasPrefix(path, "/api/") {
		mode := ModeAPIToken
		if !r.tokenConfigured {
			mode = ModeAnonymous
		}
		plan.Candidates = []Candidate{{Mode: mode, Path: path}}
		return plan, nil
	}
	if !r.adminConfigured {
		return FallbackPlan{}, opError(KindConfiguration, plan.Op,
			"admin credentials required for non-public paths")
	}
	plan.Candidates = []Candidate{{Mode: ModeAdminSession, Path: path}}
	return plan, nil
}
