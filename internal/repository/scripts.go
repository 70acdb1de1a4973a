package repository

import "github.com/redis/go-redis/v9"

// Redis key layout. The service persists exactly these two keys.
const (
	stockKey  = "flash-sale:stock"
	ledgerKey = "flash-sale:purchases"
)

// Status codes returned by the purchase script.
const (
	CodeAlreadyPurchased int64 = 0
	CodeSuccess          int64 = 1
	CodeOutOfStock       int64 = 2
)

// purchaseScript commits a purchase as one indivisible unit: duplicate check,
// stock check, decrement, ledger insert. Redis runs the whole script in its
// single execution slot, so no two callers can observe the same pre-decrement
// stock value and no user key can be inserted twice. The decrement happens
// before the insert; the counter is the authoritative low-water mark if the
// store dies between the two writes.
//
// KEYS[1] - stock counter key
// KEYS[2] - purchase ledger key (hash: user id -> purchase timestamp)
// ARGV[1] - normalized user id
// ARGV[2] - purchase timestamp, RFC 3339 UTC
//
// Returns {0, existing_timestamp} when the user already purchased,
//         {1, remaining_stock}    when the purchase committed,
//         {2, 0}                  when stock is absent or exhausted.
const purchaseScript = `
local existing = redis.call("HGET", KEYS[2], ARGV[1])
if existing then
  return {0, existing}
end
local stock = tonumber(redis.call("GET", KEYS[1]))
if not stock or stock <= 0 then
  return {2, 0}
end
local remaining = redis.call("DECR", KEYS[1])
redis.call("HSET", KEYS[2], ARGV[1], ARGV[2])
return {1, remaining}
`

// decrementScript decrements the stock counter only while it is positive.
// Administrative use; purchases decrement through purchaseScript instead.
//
// KEYS[1] - stock counter key
//
// Returns {1, remaining} on success, {0, 0} when the counter is exhausted and
// {0, -1} when the counter key does not exist.
const decrementScript = `
local stock = tonumber(redis.call("GET", KEYS[1]))
if not stock then
  return {0, -1}
end
if stock <= 0 then
  return {0, 0}
end
local remaining = redis.call("DECR", KEYS[1])
return {1, remaining}
`

// recordScript inserts a ledger entry only if the user has none yet. A ledger
// entry, once present, is never overwritten.
//
// KEYS[1] - purchase ledger key
// ARGV[1] - normalized user id
// ARGV[2] - purchase timestamp, RFC 3339 UTC
//
// Returns {1, ARGV[2]} when the entry was inserted and {0, existing} when the
// user already holds a purchase.
const recordScript = `
local existing = redis.call("HGET", KEYS[1], ARGV[1])
if existing then
  return {0, existing}
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
return {1, ARGV[2]}
`

// Scripts are registered once and run through EVALSHA with an EVAL fallback.
var (
	purchaseLua  = redis.NewScript(purchaseScript)
	decrementLua = redis.NewScript(decrementScript)
	recordLua    = redis.NewScript(recordScript)
)
