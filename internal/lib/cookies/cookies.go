package cookies

import (
	"net/http"
	"time"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// The refresh cookie is never sent anywhere but the refresh
	// endpoint.
	refreshPath = "/auth/refresh"
)

// Jar writes and clears the access/refresh cookie pair. The access
// cookie is readable by client-side scripts and scoped to the whole
// site; the refresh cookie is HttpOnly and scoped to the refresh
// endpoint only.
type Jar struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(accessTTL, refreshTTL time.Duration) *Jar {
	return &Jar{
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (j *Jar) SetSession(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(j.accessTTL.Seconds()),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    refreshToken,
		Path:     refreshPath,
		MaxAge:   int(j.refreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (j *Jar) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     refreshPath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Access returns the access token from the request cookies.
func Access(r *http.Request) (string, error) {
	c, err := r.Cookie(AccessCookie)
	if err != nil {
		return "", err
	}

	return c.Value, nil
}

// Refresh returns the refresh token from the request cookies.
func Refresh(r *http.Request) (string, error) {
	c, err := r.Cookie(RefreshCookie)
	if err != nil {
		return "", err
	}

	return c.Value, nil
}
