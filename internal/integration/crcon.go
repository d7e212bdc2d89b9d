package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"
	"gopkg.in/guregu/null.v3"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
)

const (
	// blacklists were introduced with CRCON v10
	crconMinVersion = "v10.0.0"

	crconPageSize  = 100
	crconAdminName = "Barricade"
)

var (
	crconVersionRegex = regexp.MustCompile(`v?(\d+)\.(\d+)\.(\d+)`)

	crconRequiredPermissions = []string{
		"api.can_view_blacklists",
		"api.can_create_blacklists",
		"api.can_add_blacklist_records",
		"api.can_change_blacklist_records",
		"api.can_delete_blacklist_records",
	}
)

// CRCON drives the blacklist of a Community RCON instance through its HTTP API.
type CRCON struct {
	config model.Integration
	req    *requester
}

var (
	_ Integration  = (*CRCON)(nil)
	_ Synchronizer = (*CRCON)(nil)
	_ Namer        = (*CRCON)(nil)
)

func NewCRCON(config model.Integration, client *http.Client) *CRCON {
	return &CRCON{
		config: config,
		req: &requester{
			client: client,
			header: http.Header{"Authorization": {"Bearer " + config.APIKey}},
		},
	}
}

func (c *CRCON) Config() model.Integration {
	return c.config
}

func (c *CRCON) Close() error {
	return nil
}

// call invokes an API endpoint and returns the "result" member of the CRCON
// response envelope. GET requests carry data as query parameters.
func (c *CRCON) call(ctx context.Context, method, endpoint string, data map[string]any) (gjson.Result, error) {
	u := strings.TrimSuffix(c.config.APIURL, "/") + endpoint

	var (
		query url.Values
		body  []byte
		err   error
	)
	if method == http.MethodGet {
		query = url.Values{}
		for k, v := range data {
			query.Set(k, fmt.Sprint(v))
		}
	} else if data != nil {
		body, err = json.Marshal(data)
		if err != nil {
			return gjson.Result{}, err
		}
	}

	b, err := c.req.do(ctx, method, u, query, body)
	if err != nil {
		return gjson.Result{}, classify(constant.IntegrationTypeCRCON, err)
	}

	resp := gjson.ParseBytes(b)
	if resp.Get("failed").Bool() {
		return gjson.Result{}, errors.Errorf("crcon %s failed: %s", endpoint, resp.Get("error").String())
	}
	return resp.Get("result"), nil
}

func (c *CRCON) ApplyBan(ctx context.Context, req *BanRequest) (string, error) {
	blacklistID, err := strconv.ParseInt(c.config.BanlistID.String, 10, 64)
	if err != nil {
		return "", NewConfigError(constant.IntegrationTypeCRCON, "blacklist is not set up", err)
	}

	result, err := c.call(ctx, http.MethodPost, "/add_blacklist_record", map[string]any{
		"blacklist_id": blacklistID,
		"player_id":    req.PlayerID,
		"reason":       req.Reason,
		"admin_name":   crconAdminName,
	})
	if err != nil {
		return "", err
	}

	id := result.Get("id")
	if !id.Exists() {
		return "", errors.New("crcon add_blacklist_record: response carries no record id")
	}
	return id.String(), nil
}

func (c *CRCON) ReverseBan(ctx context.Context, req *UnbanRequest) error {
	recordID, err := strconv.ParseInt(req.RemoteID, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid crcon record id %q", req.RemoteID)
	}

	_, err = c.call(ctx, http.MethodPost, "/delete_blacklist_record", map[string]any{
		"record_id": recordID,
	})
	if isStatus(err, http.StatusNotFound) {
		return ErrRemoteBanNotFound
	}
	return err
}

func (c *CRCON) Validate(ctx context.Context, community *model.Community) error {
	if community.ID != c.config.CommunityID {
		return NewConfigError(constant.IntegrationTypeCRCON, "communities do not match", nil)
	}
	if !strings.HasSuffix(c.config.APIURL, "/api") {
		return NewConfigError(constant.IntegrationTypeCRCON, `API URL does not end with "/api"`, nil)
	}

	if err := c.validateAPIAccess(ctx); err != nil {
		return err
	}

	if !c.config.BanlistID.Valid || c.config.BanlistID.String == "" {
		if err := c.createBlacklist(ctx, community); err != nil {
			return NewConfigError(constant.IntegrationTypeCRCON, "failed to create blacklist", err)
		}
		return nil
	}
	return c.validateBlacklist(ctx)
}

func (c *CRCON) validateAPIAccess(ctx context.Context) error {
	perms, err := c.call(ctx, http.MethodGet, "/get_own_user_permissions", nil)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) {
			return ce
		}
		return NewConfigError(constant.IntegrationTypeCRCON, "failed to connect", err)
	}

	if !perms.Get("is_superuser").Bool() {
		granted := lo.Map(perms.Get("permissions").Array(), func(p gjson.Result, _ int) string {
			return p.String()
		})
		if missing, _ := lo.Difference(crconRequiredPermissions, granted); len(missing) > 0 {
			return NewConfigError(constant.IntegrationTypeCRCON, "missing permissions: "+strings.Join(missing, ", "), nil)
		}
	}

	version, err := c.call(ctx, http.MethodGet, "/get_version", nil)
	if err != nil {
		return NewConfigError(constant.IntegrationTypeCRCON, "failed to retrieve version", err)
	}
	v := canonicalCRCONVersion(version.String())
	if v == "" {
		return NewConfigError(constant.IntegrationTypeCRCON, fmt.Sprintf("unknown CRCON version %q", version.String()), nil)
	}
	if semver.Compare(v, crconMinVersion) < 0 {
		return NewConfigError(constant.IntegrationTypeCRCON, fmt.Sprintf("outdated CRCON version %s, at least %s is required", v, crconMinVersion), nil)
	}
	return nil
}

func canonicalCRCONVersion(raw string) string {
	m := crconVersionRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return ""
	}
	return semver.Canonical(fmt.Sprintf("v%s.%s.%s", m[1], m[2], m[3]))
}

func (c *CRCON) createBlacklist(ctx context.Context, community *model.Community) error {
	result, err := c.call(ctx, http.MethodPost, "/create_blacklist", map[string]any{
		"name":        fmt.Sprintf("Barricade - %s (ID: %d)", community.Name, community.ID),
		"sync_method": "kick_only",
	})
	if err != nil {
		return err
	}
	id := result.Get("id")
	if !id.Exists() {
		return errors.New("crcon create_blacklist: response carries no blacklist id")
	}
	c.config.BanlistID = null.StringFrom(id.String())
	return nil
}

func (c *CRCON) validateBlacklist(ctx context.Context) error {
	// get_blacklists is used over get_blacklist as the latter also returns every record
	blacklists, err := c.call(ctx, http.MethodGet, "/get_blacklists", nil)
	if err != nil {
		return NewConfigError(constant.IntegrationTypeCRCON, "failed to retrieve blacklists", err)
	}
	for _, bl := range blacklists.Array() {
		if bl.Get("id").String() == c.config.BanlistID.String {
			return nil
		}
	}
	return NewConfigError(constant.IntegrationTypeCRCON, fmt.Sprintf("blacklist %s does not exist", c.config.BanlistID.String), nil)
}

func (c *CRCON) RemoteBans(ctx context.Context) (map[string]*RemoteBan, error) {
	bans := map[string]*RemoteBan{}
	for page := 1; ; page++ {
		result, err := c.call(ctx, http.MethodGet, "/get_blacklist_bans", map[string]any{
			"blacklist_id":    c.config.BanlistID.String,
			"exclude_expired": false,
			"page_size":       crconPageSize,
			"page":            page,
		})
		if err != nil {
			return nil, err
		}

		for _, record := range result.Get("records").Array() {
			id := record.Get("id").String()
			bans[id] = &RemoteBan{
				RemoteID: id,
				PlayerID: record.Get("player_id").String(),
				Active:   record.Get("is_active").Bool(),
			}
		}

		if int64(page*crconPageSize) >= result.Get("total").Int() {
			break
		}
	}
	return bans, nil
}

func (c *CRCON) ExpireRemoteBan(ctx context.Context, remoteID string) error {
	recordID, err := strconv.ParseInt(remoteID, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid crcon record id %q", remoteID)
	}
	_, err = c.call(ctx, http.MethodPost, "/edit_blacklist_record", map[string]any{
		"record_id":  recordID,
		"expires_at": time.Now().UTC().Format(time.RFC3339),
	})
	return err
}

func (c *CRCON) InstanceName(ctx context.Context) (string, error) {
	result, err := c.call(ctx, http.MethodGet, "/get_public_info", nil)
	if err != nil {
		return "", err
	}
	name := result.Get("name.short_name").String()
	if name == "" {
		log.Debug().
			Str("evt.name", "integration.crcon.instance_name.missing").
			Int64("integration.id", c.config.ID).
			Msg("crcon public info carries no short name")
		name = result.Get("name.name").String()
	}
	return name, nil
}
