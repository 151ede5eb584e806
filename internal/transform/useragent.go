package transform

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/mssola/user_agent"
	"github.com/tidwall/gjson"
)

type userAgentOptions struct {
	Field  string `koanf:"field"`  // gjson path of the raw user agent string
	Target string `koanf:"target"` // top-level key receiving the parsed object
}

type UserAgent struct {
	Platform        string          `json:"platform"`
	OperatingSystem OperatingSystem `json:"operatingSystem"`
	Localization    string          `json:"localization"`
	Browser         Browser         `json:"browser"`
	Bot             bool            `json:"bot"`
	Mobile          bool            `json:"mobile"`
}

type OperatingSystem struct {
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Version  string `json:"version"`
}

type Browser struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Engine        string `json:"engine"`
	EngineVersion string `json:"engineVersion"`
}

func ParseUserAgent(raw string) (UserAgent, error) {
	str, err := url.QueryUnescape(raw)
	if err != nil {
		return UserAgent{}, err
	}
	ua := user_agent.New(str)
	os := ua.OSInfo()
	bName, bVersion := ua.Browser()
	eName, eVersion := ua.Engine()
	return UserAgent{
		Platform: ua.Platform(),
		OperatingSystem: OperatingSystem{
			Name:     os.Name,
			FullName: os.FullName,
			Version:  os.Version,
		},
		Localization: ua.Localization(),
		Browser: Browser{
			Name:          bName,
			Version:       bVersion,
			Engine:        eName,
			EngineVersion: eVersion,
		},
		Bot:    ua.Bot(),
		Mobile: ua.Mobile(),
	}, nil
}

// userAgentEnricher adds a parsed user agent object to JSON records.
type userAgentEnricher struct {
	opts userAgentOptions
}

func newUserAgent(spec Spec) (Transformer, error) {
	opts := userAgentOptions{Target: "user_agent"}
	if err := spec.DecodeOptions(&opts); err != nil {
		return nil, err
	}
	if opts.Field == "" {
		return nil, errors.New("field is required")
	}
	return &userAgentEnricher{opts: opts}, nil
}

func (u *userAgentEnricher) Transform(_ context.Context, payload []byte) ([]byte, error) {
	res := gjson.GetBytes(payload, u.opts.Field)
	if res.Type != gjson.String {
		return payload, nil
	}
	ua, err := ParseUserAgent(res.Str)
	if err != nil {
		return nil, fmt.Errorf("user agent: %w", err)
	}

	var obj map[string]any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, errors.New("payload is not a JSON object")
	}
	obj[u.opts.Target] = ua
	return json.Marshal(obj)
}

func init() { Register("useragent", newUserAgent) }
