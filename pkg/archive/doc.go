// Package archive stores per-participant replay analysis summaries in Redis.
//
// # Overview
//
// An analysis run produces one Summary per participant. The archive keeps
// those summaries so they can be listed and compared after the replay file
// is gone, and announces every saved summary on a Pub/Sub channel so other
// processes can follow a batch analysis as it happens.
//
// # Multi-Instance Support
//
// All Redis keys and Pub/Sub channels are namespaced by instance name so
// several archives can share one Redis server without interference.
//
// # Usage Example
//
//	opts, err := redis.ParseURL("redis://localhost:6379")
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := archive.NewClient(opts, "default")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	summary := &archive.Summary{
//		ReplayID: uuid.New().String(),
//		Replay:   "ladder-game.SC2Replay",
//		PID:      1,
//		Name:     "Serral",
//	}
//	if err := client.SaveSummary(ctx, summary); err != nil {
//		log.Fatal(err)
//	}
//
// # Redis Schema
//
// Summaries: spoor:{instance_name}:replay:{replay_id}:participant:{pid} (hash)
// Participants of a replay: spoor:{instance_name}:replay:{replay_id}:participants (set)
//
// Pub/Sub channel: spoor:{instance_name}:analysis_events
package archive
