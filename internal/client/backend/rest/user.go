package rest

import (
	"github.com/dmitrijs2005/authflow/internal/client/backend"
	"github.com/tidwall/gjson"
)

var providerIDs = map[string]string{
	"email":  backend.ProviderPassword,
	"google": backend.ProviderGoogle,
}

var providerNames = map[string]string{
	backend.ProviderGoogle: "google",
}

// parseUser reads a GoTrue user object.
func parseUser(u gjson.Result) *backend.Identity {
	id := &backend.Identity{
		UID:           u.Get("id").String(),
		Email:         u.Get("email").String(),
		DisplayName:   firstString(u, "user_metadata.full_name", "user_metadata.name"),
		PhotoURL:      firstString(u, "user_metadata.avatar_url", "user_metadata.picture"),
		EmailVerified: u.Get("email_confirmed_at").Type == gjson.String,
	}
	u.Get("app_metadata.providers").ForEach(func(_, v gjson.Result) bool {
		name := v.String()
		if mapped, ok := providerIDs[name]; ok {
			name = mapped
		}
		id.Providers = append(id.Providers, name)
		return true
	})
	if len(id.Providers) == 0 {
		if p := u.Get("app_metadata.provider").String(); p != "" {
			if mapped, ok := providerIDs[p]; ok {
				p = mapped
			}
			id.Providers = []string{p}
		}
	}
	return id
}

// session is what a token grant returns.
type session struct {
	accessToken  string
	refreshToken string
	user         *backend.Identity
}

// parseSession returns nil when body carries only a user.
func parseSession(body []byte) (*session, *backend.Identity) {
	res := gjson.ParseBytes(body)
	if at := res.Get("access_token").String(); at != "" {
		return &session{
			accessToken:  at,
			refreshToken: res.Get("refresh_token").String(),
			user:         parseUser(res.Get("user")),
		}, nil
	}
	if res.Get("user").Exists() {
		return nil, parseUser(res.Get("user"))
	}
	return nil, parseUser(res)
}
