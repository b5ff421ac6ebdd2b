/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package protocol

import "errors"

var (
	// ErrMalformed is returned for payloads that cannot be parsed.
	ErrMalformed        = errors.New("malformed payload")
	ErrMissingClientID  = errors.New("client message missing id")
	ErrInvalidClientID  = errors.New("client id is not a valid subject token")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrUnknownResponse  = errors.New("unknown response code")
	ErrMissingSubject   = errors.New("subject must not be empty")
	ErrSubjectCollision = errors.New("inbound and outbound subjects overlap")
	ErrReservedClientID = errors.New("client id maps onto a shared subject")
)
