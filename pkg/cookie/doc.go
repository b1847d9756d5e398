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
Package cookie is the durable key/value layer under the consent engine.

🎯 Purpose:
- Answer "is there a preference cookie?" and hand back its raw value
- Write the cookie with the configured expiry, domain and flags
- Render the exact assignment line a browser would receive

🔄 Flow:
1. Engine asks Exists / Read with the configured cookie name
2. Engine encodes a new record and calls Write with ttl days + attributes
3. Jar computes expires = now + ttl*86400000ms and records the assignment

🤝 Implementations:
- Jar: in-memory document.cookie, clock injectable for tests
- FileJar: Jar persisted to JSON between CLI runs

📝 Wire format:

	COOKIE_NOTICE_PREFERENCES=[{"handle":"analytics","value":true}];expires=Sat, 31 Oct 2026 10:00:00 GMT;domain=example.com;path=/;secure;samesite=lax

secure and samesite are only emitted when configured. Writes never fail;
a store that drops the cookie just means the next boot sees no record.
*/
package cookie
