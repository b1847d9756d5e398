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
Package engine is the consent state machine.

🎯 Purpose:
- Replay a visitor's stored choices to subscribers on page boot
- Pre-check default-enabled categories on a first visit
- Diff control state against the stored record on save and announce changes
- Persist the full record and hide the collection surface

🔄 Lifecycle:

	Uninitialized --Initialize--> Idle --Save--> Saving --> Idle
	                               ^                          |
	                               +--------------------------+

📝 Event order on Save:
 1. preferences_updated with every registry category
 2. accepted / declined, registry order, changed categories only
 3. cookie written, surface hidden

⚠️ Failure handling:
- An unreadable cookie is logged and treated as no cookie
- A registry category without a control fails with ErrMissingControl
- The first subscriber error aborts the operation; Save writes nothing

Every collaborator is passed in through Options, so several engines can run
side by side against different jars.
*/
package engine
