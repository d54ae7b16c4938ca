// internal/identity/neynar.go
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/launchcast/stealgame/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	neynarBaseURL   = "https://api.neynar.com/v2/farcaster"
	warpcastRewards = "https://api.warpcast.com/v1/creator-rewards-winner-history"

	// avatarProxyBase serves re-hosted avatars through the image CDN so
	// the engine never stores third-party blobs itself.
	avatarProxyBase = "https://wrpcd.net/cdn-cgi/image/anim=false,fit=contain,f=auto,w=336"
)

// UserStore is the persistence surface the Neynar resolver needs.
type UserStore interface {
	GetByFarcasterID(ctx context.Context, fid int64) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}

// Neynar implements Resolver against the Neynar and Warpcast HTTP APIs.
type Neynar struct {
	apiKey string
	users  UserStore
	client *http.Client
	logger *logrus.Logger
}

func NewNeynar(apiKey string, users UserStore, logger *logrus.Logger) *Neynar {
	return &Neynar{
		apiKey: apiKey,
		users:  users,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type neynarProfile struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	PfpURL      string `json:"pfp_url"`
}

// ResolveOrCreate looks the fid up locally first, then falls back to
// the Neynar bulk-user endpoint and creates a PREMADE row. The avatar
// is referenced through the CDN proxy rather than copied.
func (n *Neynar) ResolveOrCreate(ctx context.Context, fid int64) (*models.User, error) {
	u, err := n.users.GetByFarcasterID(ctx, fid)
	if err != nil {
		return nil, fmt.Errorf("failed to look up fid %d: %w", fid, err)
	}
	if u != nil {
		return u, nil
	}

	var payload struct {
		Users []neynarProfile `json:"users"`
	}
	endpoint := fmt.Sprintf("%s/user/bulk?fids=%d", neynarBaseURL, fid)
	if err := n.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("neynar user lookup failed: %w", err)
	}
	if len(payload.Users) == 0 {
		return nil, fmt.Errorf("no farcaster profile for fid %d", fid)
	}
	profile := payload.Users[0]

	avatarURL := ""
	if profile.PfpURL != "" {
		avatarURL = avatarProxyBase + "/" + url.QueryEscape(profile.PfpURL)
	}

	u = &models.User{
		ID:          uuid.New(),
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		AvatarURL:   avatarURL,
		FarcasterID: fid,
		Status:      models.UserPremade,
	}
	if err := n.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user for fid %d: %w", fid, err)
	}
	n.logger.WithFields(logrus.Fields{"fid": fid, "username": u.Username}).Info("created user from farcaster profile")
	return u, nil
}

// Followees lists fids the given account follows.
func (n *Neynar) Followees(ctx context.Context, fid int64, limit int) ([]int64, error) {
	var payload struct {
		Users []struct {
			User neynarProfile `json:"user"`
		} `json:"users"`
	}
	endpoint := fmt.Sprintf("%s/following?fid=%d&limit=%d", neynarBaseURL, fid, limit)
	if err := n.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("neynar following lookup failed: %w", err)
	}
	fids := make([]int64, 0, len(payload.Users))
	for _, entry := range payload.Users {
		if entry.User.FID != 0 {
			fids = append(fids, entry.User.FID)
		}
	}
	return fids, nil
}

// TopCreators lists fids from Warpcast's creator-rewards winner feed.
func (n *Neynar) TopCreators(ctx context.Context) ([]int64, error) {
	var payload struct {
		Result struct {
			History struct {
				Winners []struct {
					FID int64 `json:"fid"`
				} `json:"winners"`
			} `json:"history"`
		} `json:"result"`
	}
	if err := n.getJSON(ctx, warpcastRewards, &payload); err != nil {
		return nil, fmt.Errorf("warpcast top creators lookup failed: %w", err)
	}
	winners := payload.Result.History.Winners
	fids := make([]int64, 0, len(winners))
	for _, w := range winners {
		if w.FID != 0 {
			fids = append(fids, w.FID)
		}
	}
	return fids, nil
}

func (n *Neynar) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	if n.apiKey != "" {
		req.Header.Set("api_key", n.apiKey)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, endpoint)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
