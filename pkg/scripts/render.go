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

package scripts

import (
	"html/template"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// identifiers land inside JS string literals; html/template escapes them for
// that context
var snippets = template.Must(template.New("scripts").Parse(`
{{- define "google-tag-manager" -}}
<script>(function(w,d,s,l,i){w[l]=w[l]||[];w[l].push({'gtm.start':new Date().getTime(),event:'gtm.js'});var f=d.getElementsByTagName(s)[0],j=d.createElement(s),dl=l!='dataLayer'?'&l='+l:'';j.async=true;j.src='https://www.googletagmanager.com/gtm.js?id='+i+dl;f.parentNode.insertBefore(j,f);})(window,document,'script','dataLayer',{{.GTMContainerID}});</script>
{{- end -}}
{{- define "meta-pixel" -}}
<script>!function(f,b,e,v,n,t,s){if(f.fbq)return;n=f.fbq=function(){n.callMethod?n.callMethod.apply(n,arguments):n.queue.push(arguments)};if(!f._fbq)f._fbq=n;n.push=n;n.loaded=!0;n.version='2.0';n.queue=[];t=b.createElement(e);t.async=!0;t.src=v;s=b.getElementsByTagName(e)[0];s.parentNode.insertBefore(t,s)}(window,document,'script','https://connect.facebook.net/en_US/fbevents.js');fbq('init',{{.MetaPixelID}});fbq('track','PageView');</script>
{{- end -}}
{{- define "other" -}}
<script>{{.Inline}}</script>
{{- end -}}
`))

// 🧩 Rendered is a script ready to be injected into the page
type Rendered struct {
	Handle string
	Type   Type
	// HTML is the full <script> element.
	HTML string
	// JavaScript is the raw source for TypeOther, empty otherwise.
	JavaScript string
}

// Render turns a script into its <script> element.
func Render(handle string, s Script) (Rendered, error) {
	if err := s.Validate(); err != nil {
		return Rendered{}, err
	}

	data := struct {
		GTMContainerID string
		MetaPixelID    string
		Inline         template.JS
	}{
		GTMContainerID: s.GTMContainerID,
		MetaPixelID:    s.MetaPixelID,
		// inline javascript is authored by site admins and runs verbatim
		Inline: template.JS(s.InlineJavaScript),
	}

	var b strings.Builder
	if err := snippets.ExecuteTemplate(&b, string(s.Type), data); err != nil {
		return Rendered{}, errors.Errorf("rendering %s script for %q: %w", s.Type, handle, err)
	}

	out := Rendered{Handle: handle, Type: s.Type, HTML: b.String()}
	if s.Type == TypeOther {
		out.JavaScript = s.InlineJavaScript
	}
	return out, nil
}
