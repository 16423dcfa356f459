package cache

import (
	"errors"
	"log"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/goccy/go-json"
	"github.com/karlseguin/ccache/v3"

	"github.com/glodyfimpa/str-analyzer/internal/domain"
)

// ZoneCache caches zone snapshots by id.
type ZoneCache interface {
	Get(id string) (domain.Zone, bool)
	Set(z domain.Zone)
	Delete(id string)
}

const (
	localTTL  = 5 * time.Minute
	remoteTTL = 15 * time.Minute
	keyPrefix = "zone:"
)

// zoneCache checks the in-process cache first, then memcached when configured.
type zoneCache struct {
	local  *ccache.Cache[domain.Zone]
	remote *memcache.Client
}

// NewZoneCache builds a local cache, backed by memcached when addr is set.
func NewZoneCache(memcachedAddr string) ZoneCache {
	c := &zoneCache{
		local: ccache.New(ccache.Configure[domain.Zone]().MaxSize(1000)),
	}
	if memcachedAddr != "" {
		c.remote = memcache.New(memcachedAddr)
		log.Printf("zone cache backed by memcached at %s", memcachedAddr)
	}
	return c
}

func (c *zoneCache) Get(id string) (domain.Zone, bool) {
	if item := c.local.Get(id); item != nil && !item.Expired() {
		return item.Value(), true
	}
	if c.remote == nil {
		return domain.Zone{}, false
	}

	it, err := c.remote.Get(keyPrefix + id)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			log.Printf("memcached get %s: %v", id, err)
		}
		return domain.Zone{}, false
	}
	var z domain.Zone
	if err := json.Unmarshal(it.Value, &z); err != nil {
		log.Printf("memcached decode %s: %v", id, err)
		return domain.Zone{}, false
	}
	c.local.Set(id, z, localTTL)
	return z, true
}

func (c *zoneCache) Set(z domain.Zone) {
	c.local.Set(z.ID, z, localTTL)
	if c.remote == nil {
		return
	}

	b, err := json.Marshal(z)
	if err != nil {
		log.Printf("memcached encode %s: %v", z.ID, err)
		return
	}
	if err := c.remote.Set(&memcache.Item{Key: keyPrefix + z.ID, Value: b, Expiration: int32(remoteTTL.Seconds())}); err != nil {
		log.Printf("memcached set %s: %v", z.ID, err)
	}
}

func (c *zoneCache) Delete(id string) {
	c.local.Delete(id)
	if c.remote == nil {
		return
	}
	if err := c.remote.Delete(keyPrefix + id); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		log.Printf("memcached delete %s: %v", id, err)
	}
}
