package rediskey

import "fmt"

// Gateway keys (global convention across processes)
const (
	TenantPrefix = "gateway:tenant"
	NoncePrefix  = "gateway:nonce"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildTenantKey returns "gateway:tenant:{owner}"
func BuildTenantKey(owner string) string {
	return NamespaceKey(TenantPrefix, owner)
}

// BuildNonceKey returns "gateway:nonce:{owner}:{nonce}"
func BuildNonceKey(owner, nonce string) string {
	return NamespaceKey(NoncePrefix, owner+":"+nonce)
}
