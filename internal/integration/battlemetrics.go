package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
	"barricade.gg/backend/internal/util"
)

const (
	// BattleMetrics rejects ban reasons longer than this
	bmMaxReasonLength = 255
	bmPageSize        = 100
)

// organization names rarely change and are only used for display
var bmOrganizationNames = cache.New(10*time.Minute, 30*time.Minute)

// BattleMetrics manages bans on a ban list of a BattleMetrics organization.
type BattleMetrics struct {
	config  model.Integration
	baseURL string
	req     *requester
}

var (
	_ Integration  = (*BattleMetrics)(nil)
	_ Synchronizer = (*BattleMetrics)(nil)
	_ Namer        = (*BattleMetrics)(nil)
)

func NewBattleMetrics(config model.Integration, baseURL string, client *http.Client) *BattleMetrics {
	return &BattleMetrics{
		config:  config,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		req: &requester{
			client: client,
			header: http.Header{"Authorization": {"Bearer " + config.APIKey}},
		},
	}
}

func (b *BattleMetrics) Config() model.Integration {
	return b.config
}

func (b *BattleMetrics) Close() error {
	return nil
}

func (b *BattleMetrics) call(ctx context.Context, method, endpoint string, query url.Values, body []byte) (gjson.Result, error) {
	u := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		u = b.baseURL + endpoint
	}
	resp, err := b.req.do(ctx, method, u, query, body)
	if err != nil {
		return gjson.Result{}, classify(constant.IntegrationTypeBattleMetrics, err)
	}
	return gjson.ParseBytes(resp), nil
}

// truncateReason cuts reason down to what BattleMetrics accepts.
func truncateReason(reason string) string {
	if len(reason) <= bmMaxReasonLength {
		return reason
	}
	cut := reason[:bmMaxReasonLength-2]
	for !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + ".."
}

func (b *BattleMetrics) banPayload(req *BanRequest) ([]byte, error) {
	idType, err := util.ClassifyPlayerID(req.PlayerID)
	if err != nil {
		return nil, err
	}

	doc := `{"data":{"type":"ban"}}`
	sets := []struct {
		path  string
		value any
	}{
		{"data.attributes.autoAddEnabled", true},
		{"data.attributes.expires", nil},
		{"data.attributes.identifiers.0.type", string(idType)},
		{"data.attributes.identifiers.0.identifier", req.PlayerID},
		{"data.attributes.identifiers.0.manual", true},
		{"data.attributes.nativeEnabled", nil},
		{"data.attributes.reason", truncateReason(req.Reason)},
		{"data.attributes.note", fmt.Sprintf("%s\nPlayer: %s\nReport: #%d", req.Reason, req.PlayerName, req.ReportID)},
		{"data.relationships.organization.data.type", "organization"},
		{"data.relationships.organization.data.id", b.config.OrganizationID.String},
		{"data.relationships.banList.data.type", "banList"},
		{"data.relationships.banList.data.id", b.config.BanlistID.String},
	}
	for _, s := range sets {
		doc, err = sjson.Set(doc, s.path, s.value)
		if err != nil {
			return nil, errors.Wrapf(err, "build ban payload at %s", s.path)
		}
	}
	return []byte(doc), nil
}

func (b *BattleMetrics) ApplyBan(ctx context.Context, req *BanRequest) (string, error) {
	if !b.config.BanlistID.Valid {
		return "", NewConfigError(constant.IntegrationTypeBattleMetrics, "ban list is not set up", nil)
	}

	payload, err := b.banPayload(req)
	if err != nil {
		return "", err
	}

	resp, err := b.call(ctx, http.MethodPost, "/bans", nil, payload)
	if err != nil {
		return "", err
	}
	id := resp.Get("data.id")
	if !id.Exists() {
		return "", errors.New("battlemetrics create ban: response carries no ban id")
	}
	return id.String(), nil
}

func (b *BattleMetrics) ReverseBan(ctx context.Context, req *UnbanRequest) error {
	_, err := b.call(ctx, http.MethodDelete, "/bans/"+url.PathEscape(req.RemoteID), nil, nil)
	if isStatus(err, http.StatusNotFound) {
		return ErrRemoteBanNotFound
	}
	return err
}

func (b *BattleMetrics) Validate(ctx context.Context, community *model.Community) error {
	if community.ID != b.config.CommunityID {
		return NewConfigError(constant.IntegrationTypeBattleMetrics, "communities do not match", nil)
	}

	if _, err := b.InstanceName(ctx); err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			return ce
		}
		return NewConfigError(constant.IntegrationTypeBattleMetrics, "failed to retrieve organization", err)
	}

	if !b.config.BanlistID.Valid || b.config.BanlistID.String == "" {
		if err := b.createBanList(ctx, community); err != nil {
			return NewConfigError(constant.IntegrationTypeBattleMetrics, "failed to create ban list", err)
		}
		return nil
	}
	return b.validateBanList(ctx)
}

func (b *BattleMetrics) InstanceName(ctx context.Context) (string, error) {
	orgID := b.config.OrganizationID.String
	if name, ok := bmOrganizationNames.Get(orgID); ok {
		return name.(string), nil
	}

	resp, err := b.call(ctx, http.MethodGet, "/organizations/"+url.PathEscape(orgID), nil, nil)
	if err != nil {
		return "", err
	}
	name := resp.Get("data.attributes.name").String()
	bmOrganizationNames.SetDefault(orgID, name)
	return name, nil
}

func (b *BattleMetrics) createBanList(ctx context.Context, community *model.Community) error {
	doc := `{"data":{"type":"banList","attributes":{"action":"kick","defaultIdentifiers":["steamID","hllWindowsID"],"defaultReasons":[],"defaultAutoAddEnabled":true}}}`
	doc, err := sjson.Set(doc, "data.attributes.name", fmt.Sprintf("Barricade - %s (ID: %d)", community.Name, community.ID))
	if err != nil {
		return err
	}
	for _, rel := range []string{"organization", "owner"} {
		doc, err = sjson.Set(doc, "data.relationships."+rel+".data", map[string]string{
			"type": "organization",
			"id":   b.config.OrganizationID.String,
		})
		if err != nil {
			return err
		}
	}

	resp, err := b.call(ctx, http.MethodPost, "/ban-lists", nil, []byte(doc))
	if err != nil {
		return err
	}
	if resp.Get("data.type").String() != "banList" || !resp.Get("data.id").Exists() {
		return errors.New("battlemetrics create ban list: unexpected response")
	}
	b.config.BanlistID = null.StringFrom(resp.Get("data.id").String())
	return nil
}

func (b *BattleMetrics) validateBanList(ctx context.Context) error {
	resp, err := b.call(ctx, http.MethodGet, "/ban-lists/"+url.PathEscape(b.config.BanlistID.String), url.Values{"include": {"owner"}}, nil)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			return ce
		}
		return NewConfigError(constant.IntegrationTypeBattleMetrics, "failed to retrieve ban list", err)
	}

	if got := resp.Get("data.id").String(); got != b.config.BanlistID.String {
		return NewConfigError(constant.IntegrationTypeBattleMetrics, fmt.Sprintf("ban list mismatch: asked for %s but got %s", b.config.BanlistID.String, got), nil)
	}
	if owner := resp.Get("data.relationships.owner.data.id").String(); owner != b.config.OrganizationID.String {
		return NewConfigError(constant.IntegrationTypeBattleMetrics, fmt.Sprintf("ban list is owned by organization %s, not %s", owner, b.config.OrganizationID.String), nil)
	}
	return nil
}

func (b *BattleMetrics) RemoteBans(ctx context.Context) (map[string]*RemoteBan, error) {
	bans := map[string]*RemoteBan{}
	now := time.Now()

	next := "/bans"
	query := url.Values{
		"filter[banList]": {b.config.BanlistID.String},
		"filter[expired]": {"true"},
		"page[size]":      {fmt.Sprint(bmPageSize)},
	}
	for next != "" {
		resp, err := b.call(ctx, http.MethodGet, next, query, nil)
		if err != nil {
			return nil, err
		}

		for _, ban := range resp.Get("data").Array() {
			id := ban.Get("id").String()
			rb := &RemoteBan{RemoteID: id, Active: true}

			for _, ident := range ban.Get("attributes.identifiers").Array() {
				typ := constant.PlayerIDType(ident.Get("type").String())
				if typ == constant.PlayerIDTypeSteam || typ == constant.PlayerIDTypeWindows {
					rb.PlayerID = ident.Get("identifier").String()
					break
				}
			}

			if expires := ban.Get("attributes.expires"); expires.Exists() && expires.Type != gjson.Null {
				t, err := time.Parse(time.RFC3339, expires.String())
				rb.Active = err != nil || t.After(now)
			}
			bans[id] = rb
		}

		// links.next carries the full query of the next page
		next = resp.Get("links.next").String()
		query = nil
	}
	return bans, nil
}

func (b *BattleMetrics) ExpireRemoteBan(ctx context.Context, remoteID string) error {
	doc, err := sjson.Set(`{"data":{"type":"ban"}}`, "data.attributes.expires", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	_, err = b.call(ctx, http.MethodPatch, "/bans/"+url.PathEscape(remoteID), nil, []byte(doc))
	return err
}
