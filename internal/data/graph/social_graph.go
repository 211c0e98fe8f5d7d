package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/socialfeed-backend/internal/domain"
	apperr "github.com/yungbote/socialfeed-backend/internal/pkg/errors"
	"github.com/yungbote/socialfeed-backend/internal/platform/logger"
	"github.com/yungbote/socialfeed-backend/internal/platform/neo4jdb"
)

// SocialGraph stores the follow / friend / request / skip edges as neo4j
// relationships between (:User {id}) nodes:
//
//	(a)-[:FOLLOWS]->(b)
//	(a)-[:FRIENDS_WITH]->(b)   one edge per pair, matched undirected
//	(a)-[:REQUESTED]->(b)
//	(a)-[:SKIPPED {skipped_at, expires_at}]->(b)   epoch millis, expires_at 0 = never
type SocialGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
	now    func() time.Time
}

func NewSocialGraph(client *neo4jdb.Client, baseLog *logger.Logger) (*SocialGraph, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("graph: neo4j client required")
	}
	return &SocialGraph{
		client: client,
		log:    baseLog.With("repo", "Neo4jSocialGraph"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// EnsureSchema creates the user id constraint. Safe to call repeatedly.
func (g *SocialGraph) EnsureSchema(ctx context.Context) error {
	session := g.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	res, err := session.Run(ctx, `CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`, nil)
	if err != nil {
		return fmt.Errorf("graph: schema init: %w", err)
	}
	_, err = res.Consume(ctx)
	return err
}

func (g *SocialGraph) write(ctx context.Context, cypher string, params map[string]any) error {
	session := g.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

// readIDs runs a query returning a single "id" column of uuid strings.
func (g *SocialGraph) readIDs(ctx context.Context, cypher string, params map[string]any) ([]uuid.UUID, error) {
	session := g.client.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]uuid.UUID, 0, len(records))
		for _, rec := range records {
			raw, _ := rec.Get("id")
			s, _ := raw.(string)
			id, err := uuid.Parse(s)
			if err != nil {
				g.log.Warn("skipping malformed user id in graph", "value", s)
				continue
			}
			ids = append(ids, id)
		}
		return ids, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]uuid.UUID), nil
}

func (g *SocialGraph) readBool(ctx context.Context, cypher string, params map[string]any) (bool, error) {
	session := g.client.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _ := rec.Get("ok")
		b, _ := v.(bool)
		return b, nil
	})
	if err != nil {
		return false, err
	}
	return out.(bool), nil
}

func pair(a, b uuid.UUID) map[string]any {
	return map[string]any{"a": a.String(), "b": b.String()}
}

func (g *SocialGraph) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return fmt.Errorf("follow self: %w", apperr.ErrForbidden)
	}
	already, err := g.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if already {
		return fmt.Errorf("follow: %w", apperr.ErrAlreadyExists)
	}
	return g.write(ctx, `
MERGE (a:User {id: $a})
MERGE (b:User {id: $b})
MERGE (a)-[:FOLLOWS]->(b)
`, pair(followerID, followeeID))
}

func (g *SocialGraph) AddFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == friendID {
		return fmt.Errorf("befriend self: %w", apperr.ErrForbidden)
	}
	return g.write(ctx, `
MERGE (a:User {id: $a})
MERGE (b:User {id: $b})
MERGE (a)-[:FRIENDS_WITH]-(b)
WITH a, b
OPTIONAL MATCH (a)-[r:REQUESTED]-(b)
DELETE r
`, pair(userID, friendID))
}

func (g *SocialGraph) CreateFriendRequest(ctx context.Context, fromUserID, toUserID uuid.UUID) error {
	if fromUserID == toUserID {
		return fmt.Errorf("friend request to self: %w", apperr.ErrForbidden)
	}
	exists, err := g.readBool(ctx, `
OPTIONAL MATCH (:User {id: $a})-[r:REQUESTED]->(:User {id: $b})
RETURN r IS NOT NULL AS ok
`, pair(fromUserID, toUserID))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("friend request: %w", apperr.ErrAlreadyExists)
	}
	return g.write(ctx, `
MERGE (a:User {id: $a})
MERGE (b:User {id: $b})
MERGE (a)-[:REQUESTED]->(b)
`, pair(fromUserID, toUserID))
}

func (g *SocialGraph) SkipSuggestion(ctx context.Context, userID, targetID uuid.UUID, expiresAt *time.Time) error {
	params := pair(userID, targetID)
	params["skipped_at"] = g.now().UnixMilli()
	params["expires_at"] = int64(0)
	if expiresAt != nil {
		params["expires_at"] = expiresAt.UTC().UnixMilli()
	}
	return g.write(ctx, `
MERGE (a:User {id: $a})
MERGE (b:User {id: $b})
MERGE (a)-[s:SKIPPED]->(b)
SET s.skipped_at = $skipped_at, s.expires_at = $expires_at
`, params)
}

func (g *SocialGraph) GetFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.readIDs(ctx, `MATCH (:User {id: $a})-[:FOLLOWS]->(b:User) RETURN b.id AS id`,
		map[string]any{"a": userID.String()})
}

func (g *SocialGraph) GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.readIDs(ctx, `MATCH (:User {id: $a})-[:FRIENDS_WITH]-(b:User) RETURN DISTINCT b.id AS id`,
		map[string]any{"a": userID.String()})
}

func (g *SocialGraph) GetRequestsTo(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.readIDs(ctx, `MATCH (b:User)-[:REQUESTED]->(:User {id: $a}) RETURN b.id AS id`,
		map[string]any{"a": userID.String()})
}

func (g *SocialGraph) GetRequestsFrom(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.readIDs(ctx, `MATCH (:User {id: $a})-[:REQUESTED]->(b:User) RETURN b.id AS id`,
		map[string]any{"a": userID.String()})
}

func (g *SocialGraph) GetSkippedIDs(ctx context.Context, userID uuid.UUID, now time.Time) ([]uuid.UUID, error) {
	return g.readIDs(ctx, `
MATCH (:User {id: $a})-[s:SKIPPED]->(b:User)
WHERE s.expires_at = 0 OR s.expires_at > $now
RETURN b.id AS id
`, map[string]any{"a": userID.String(), "now": now.UTC().UnixMilli()})
}

func (g *SocialGraph) IsFollowing(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	return g.readBool(ctx, `
RETURN EXISTS { MATCH (:User {id: $a})-[:FOLLOWS]->(:User {id: $b}) } AS ok
`, pair(userID, otherID))
}

func (g *SocialGraph) GetFriendStatus(ctx context.Context, userID, otherID uuid.UUID) (types.FriendStatus, error) {
	session := g.client.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
RETURN
  EXISTS { MATCH (:User {id: $a})-[:FRIENDS_WITH]-(:User {id: $b}) } AS friends,
  EXISTS { MATCH (:User {id: $a})-[:REQUESTED]->(:User {id: $b}) } AS outgoing,
  EXISTS { MATCH (:User {id: $b})-[:REQUESTED]->(:User {id: $a}) } AS incoming
`, pair(userID, otherID))
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		flag := func(key string) bool {
			v, _ := rec.Get(key)
			b, _ := v.(bool)
			return b
		}
		switch {
		case flag("friends"):
			return types.FriendStatusFriends, nil
		case flag("outgoing"):
			return types.FriendStatusPendingOutgoing, nil
		case flag("incoming"):
			return types.FriendStatusPendingIncoming, nil
		}
		return types.FriendStatusNotFriends, nil
	})
	if err != nil {
		return "", err
	}
	return out.(types.FriendStatus), nil
}
