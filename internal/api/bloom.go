package api

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	visitorBloomBits   = 1 << 20
	visitorBloomHashes = 4
	visitorBloomTTL    = 48 * time.Hour
)

// visitorBloomKey：按自然日分桶，跨日后同一访客重新计数
func visitorBloomKey(now time.Time) string {
	return "geodata:visitors:" + now.Format("20060102")
}

// 文档注释：计算布隆过滤器位置
// 参数：data 为访客标识，m 为位图大小，k 为哈希次数。
// 背景：FNV64a 结合索引扰动生成 k 个位置，用于 GetBit/SetBit。
func bloomPositions(data []byte, m uint32, k int) []int64 {
	pos := make([]int64, k)
	for i := 0; i < k; i++ {
		h := fnv.New64a()
		h.Write([]byte{byte(i)})
		h.Write(data)
		pos[i] = int64(h.Sum64() % uint64(m))
	}
	return pos
}

// 文档注释：检查并写入布隆过滤器位图
// 返回：true 表示当日首次见到该访客（已写入位图）；false 表示已见过。
// 异常：Redis 交互错误时返回 error，调用方不计入访客数；rc 为 nil 时视为首次见到。
func bloomCheckAndSet(ctx context.Context, rc *redis.Client, key string, positions []int64, ttl time.Duration) (bool, error) {
	if rc == nil {
		return true, nil
	}
	pipe := rc.Pipeline()
	cmds := make([]*redis.IntCmd, len(positions))
	for i, p := range positions {
		cmds[i] = pipe.SetBit(ctx, key, p, 1)
	}
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	// SETBIT 返回旧值：任一位原为 0 即首次见到
	for _, c := range cmds {
		if c.Val() == 0 {
			return true, nil
		}
	}
	return false, nil
}
