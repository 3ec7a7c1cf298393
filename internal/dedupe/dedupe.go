// Package dedupe provides shared singleflight groups used to deduplicate
// concurrent work keyed by a canonical string.
package dedupe

import "golang.org/x/sync/singleflight"

// PetPairGroup deduplicates pet loads for the two sides of a join. The key
// is the unordered pair key from keys.PairKey, so two trainers joining each
// other at the same time share one storage round trip.
var PetPairGroup singleflight.Group
