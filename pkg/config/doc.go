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

/*
Package config loads the consent engine configuration.

🎯 Purpose:
- Read the cookie settings and consent groups a site offers
- Read the catalog of scripts gated behind each group
- Hand the engine a registry, cookie attributes and a script catalog

🔄 Flow:
1. Picks a parser by file extension (.yaml/.yml, .json, .toml, .hcl)
2. Decodes strictly; unknown fields are errors in every format
3. Applies defaults (cookie name, 14 day expiry) and normalizes same_site
4. Validates handles and script types

⚡ Not validated:
- Script identifiers (GTM container ids, pixel ids) are passed through as given

🤝 Interfaces:
- Parser: Format-specific parsing, registered with Register

🔍 Example:

	cfg, err := config.Load(ctx, "cookie-notice.yaml")
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	eng, err := engine.New(engine.Options{
		CookieName: cfg.CookieName,
		TTLDays:    cfg.CookieExpiry,
		Attributes: cfg.Attributes(),
		Registry:   reg,
		Store:      jar,
		Controls:   widget.Checkboxes(reg.Handles()...),
	})
*/
package config
