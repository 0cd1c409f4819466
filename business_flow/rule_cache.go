package businessflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amirphl/Shirahama-Clinic/commission"
	"github.com/amirphl/Shirahama-Clinic/config"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	"github.com/redis/go-redis/v9"
)

func ruleCacheKey(cfg config.CacheConfig, clinicID uint) string {
	return fmt.Sprintf("%scommission_rules:%d", cfg.RedisPrefix, clinicID)
}

// ruleCache serves the per-clinic active rule set, keeping a Redis copy so
// every completion does not re-read the rule table. Stored rows are cached,
// not engine rules, because the selector state only survives through AsRule.
type ruleCache struct {
	rc       *redis.Client
	cfg      *config.CacheConfig
	ruleRepo repository.CommissionRuleRepository
}

func newRuleCache(rc *redis.Client, cfg *config.CacheConfig, ruleRepo repository.CommissionRuleRepository) *ruleCache {
	return &ruleCache{rc: rc, cfg: cfg, ruleRepo: ruleRepo}
}

func (c *ruleCache) enabled() bool {
	return c.rc != nil && c.cfg != nil && c.cfg.Enabled
}

// ActiveRules returns the clinic's active rules, preferring the cache
func (c *ruleCache) ActiveRules(ctx context.Context, clinicID uint) ([]commission.Rule, error) {
	if !c.enabled() {
		return c.ruleRepo.ActiveRulesForClinic(ctx, clinicID)
	}

	key := ruleCacheKey(*c.cfg, clinicID)
	if bs, err := c.rc.Get(ctx, key).Bytes(); err == nil && len(bs) > 0 {
		var rows []models.CommissionRule
		if err := json.Unmarshal(bs, &rows); err == nil {
			rules := make([]commission.Rule, 0, len(rows))
			for i := range rows {
				rules = append(rules, rows[i].AsRule())
			}
			return rules, nil
		}
	}

	rows, err := c.ruleRepo.ListActiveByClinic(ctx, clinicID)
	if err != nil {
		return nil, err
	}

	plain := make([]models.CommissionRule, 0, len(rows))
	rules := make([]commission.Rule, 0, len(rows))
	for _, row := range rows {
		plain = append(plain, *row)
		rules = append(rules, row.AsRule())
	}

	if bs, err := json.Marshal(plain); err == nil {
		_ = c.rc.Set(ctx, key, bs, c.cfg.DefaultTTL).Err()
	}

	return rules, nil
}

// Invalidate drops the clinic's cached rule set after any rule mutation
func (c *ruleCache) Invalidate(ctx context.Context, clinicID uint) {
	if !c.enabled() {
		return
	}
	_ = c.rc.Del(ctx, ruleCacheKey(*c.cfg, clinicID)).Err()
}
