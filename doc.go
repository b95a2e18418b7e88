/*
	Project: Absentee
	Target: music school office staff (teacher absences) and the public enquiry form (leads)
*/
package absentee

/*
Binaries:
	- apps/api: HTTP API (echo) serving the absence form and the lead form
	- apps/cli: operator CLI (cobra) for the same flows, plus `archive` to clean up incomplete notifies

TODO: retry Notion 429 responses using the Retry-After header before reporting a RemoteError
*/
