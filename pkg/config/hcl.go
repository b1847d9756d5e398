// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
//	cookie_name   = "COOKIE_NOTICE_PREFERENCES"
//	cookie_expiry = 14
//
//	session {
//	  domain    = "example.com"
//	  same_site = "lax"
//	}
//
//	consent_group "analytics" {
//	  name = "Analytics"
//	}
//
//	script "analytics" {
//	  script_type      = "google-tag-manager"
//	  gtm_container_id = "GTM-XXXX"
//	}
type HCLParser struct{}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_cookie_name": cty.StringVal(DefaultCookieName),
		},
	}

	type hclConfig struct {
		CookieName   string `hcl:"cookie_name,optional"`
		CookieExpiry int    `hcl:"cookie_expiry,optional"`
		Session      *struct {
			Domain   string `hcl:"domain,optional"`
			Secure   bool   `hcl:"secure,optional"`
			SameSite string `hcl:"same_site,optional"`
		} `hcl:"session,block"`
		ConsentGroups []struct {
			Handle          string `hcl:"handle,label"`
			Name            string `hcl:"name,optional"`
			Description     string `hcl:"description,optional"`
			EnableByDefault bool   `hcl:"enable_by_default,optional"`
		} `hcl:"consent_group,block"`
		Scripts []struct {
			Handle           string `hcl:"handle,label"`
			ScriptType       string `hcl:"script_type"`
			GTMContainerID   string `hcl:"gtm_container_id,optional"`
			MetaPixelID      string `hcl:"meta_pixel_id,optional"`
			InlineJavascript string `hcl:"inline_javascript,optional"`
		} `hcl:"script,block"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		CookieName:   hclCfg.CookieName,
		CookieExpiry: hclCfg.CookieExpiry,
	}
	if hclCfg.Session != nil {
		cfg.Session = Session{
			Domain:   hclCfg.Session.Domain,
			Secure:   hclCfg.Session.Secure,
			SameSite: hclCfg.Session.SameSite,
		}
	}
	for _, g := range hclCfg.ConsentGroups {
		cfg.ConsentGroups = append(cfg.ConsentGroups, ConsentGroup{
			Handle:          g.Handle,
			Name:            g.Name,
			Description:     g.Description,
			EnableByDefault: g.EnableByDefault,
		})
	}
	for _, s := range hclCfg.Scripts {
		if cfg.Scripts == nil {
			cfg.Scripts = map[string][]Script{}
		}
		cfg.Scripts[s.Handle] = append(cfg.Scripts[s.Handle], Script{
			ScriptType:       s.ScriptType,
			GTMContainerID:   s.GTMContainerID,
			MetaPixelID:      s.MetaPixelID,
			InlineJavascript: s.InlineJavascript,
		})
	}

	return cfg, nil
}
