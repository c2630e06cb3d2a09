package constants

import "time"

const (
	CHANNEL_SIZE = 256 // room event and per-connection send buffer size

	MESSAGE_MAX_LEN   = 4000 // text content ceiling in UTF-16 code units
	MESSAGE_PAGE_SIZE = 50   // default page size for message history
	MESSAGE_PAGE_MAX  = 100
	PUSH_PREVIEW_LEN  = 120  // push notification body truncation
	REDIS_TIMEOUT     = 1    // message page cache TTL (minutes)

	// MEMBERSHIP_CACHE_TTL is the gateway's default membership verdict
	// TTL when the config leaves it unset.
	MEMBERSHIP_CACHE_TTL = 5 * time.Second
)
