package cache

import (
	"fmt"
	"strings"

	"playerEngagement/domain"
)

// Keys are namespaced so distinct query shapes never collide:
// namespace:identifier[:qualifier].

func BonusKey(bonusID uint64) string {
	return fmt.Sprintf("bonus:%d", bonusID)
}

func ActiveBonusesKey() string {
	return "bonuses:active"
}

func BonusesByTypeKey(t domain.BonusType) string {
	return fmt.Sprintf("bonuses:type:%s", t)
}

func BonusesBySegmentKey(seg domain.Segment) string {
	return fmt.Sprintf("bonuses:segment:%s", seg)
}

func BonusesByGameKey(gameID uint64) string {
	return fmt.Sprintf("bonuses:game:%d", gameID)
}

func PlayerKey(playerID uint) string {
	return fmt.Sprintf("player:%d", playerID)
}

func PlayerClaimsKey(playerID uint) string {
	return fmt.Sprintf("player:%d:bonusclaims", playerID)
}

func PlayerFeaturesKey(playerID uint) string {
	return fmt.Sprintf("player:%d:features", playerID)
}

func LatestRecommendationKey(playerID uint) string {
	return fmt.Sprintf("recommendation:latest:%d", playerID)
}

func keyPrefix(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
