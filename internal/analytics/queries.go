// internal/analytics/queries.go
package analytics

import "merchant-analytics/internal/models"

// Query names, used for error wrapping, logs and metrics.
const (
	queryConversationTotals   = "conversation_totals"
	queryCategoryInquiries    = "category_inquiries"
	queryOutgoingPerformance  = "outgoing_performance"
	queryDailyConversations   = "daily_conversations"
	queryHourlyResponseTime   = "hourly_response_time"
	queryIncomingIntentCounts = "incoming_intent_counts"
)

// Every query binds $1 merchant id, $2 from, $3 to. merchant_id is cast to
// uuid so a malformed identifier is rejected by the store.

const conversationTotalsSQL = `
	SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE c.converted_to_order) AS converted,
		COALESCE(AVG(c.message_count), 0)::float8 AS avg_messages
	FROM conversations c
	WHERE c.merchant_id = $1::uuid
	  AND c.created_at BETWEEN $2 AND $3`

// $4 is the group cap.
const categoryInquiriesSQL = `
	SELECT
		jsonb_build_object('` + models.SessionDataCategoryKey + `', c.session_data->>'` + models.SessionDataCategoryKey + `') AS session_data,
		COUNT(*) AS inquiries
	FROM message_logs ml
	INNER JOIN conversations c ON c.id = ml.conversation_id
	WHERE c.merchant_id = $1::uuid
	  AND ml.created_at BETWEEN $2 AND $3
	GROUP BY c.session_data->>'` + models.SessionDataCategoryKey + `'
	ORDER BY inquiries DESC
	LIMIT $4`

// $4 is the direction.
const outgoingPerformanceSQL = `
	SELECT COALESCE(AVG(ml.processing_time_ms), 0)::float8 AS avg_response_ms
	FROM message_logs ml
	INNER JOIN conversations c ON c.id = ml.conversation_id
	WHERE c.merchant_id = $1::uuid
	  AND ml.direction = $4
	  AND ml.created_at BETWEEN $2 AND $3`

const dailyConversationsSQL = `
	SELECT
		TO_CHAR(DATE(c.created_at), 'YYYY-MM-DD') AS date,
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE c.converted_to_order) AS converted
	FROM conversations c
	WHERE c.merchant_id = $1::uuid
	  AND c.created_at BETWEEN $2 AND $3
	GROUP BY DATE(c.created_at)
	ORDER BY DATE(c.created_at) ASC`

// $4 is the direction.
const hourlyResponseTimeSQL = `
	SELECT
		EXTRACT(HOUR FROM ml.created_at)::int AS hour,
		AVG(ml.processing_time_ms)::float8 AS avg_ms
	FROM message_logs ml
	INNER JOIN conversations c ON c.id = ml.conversation_id
	WHERE c.merchant_id = $1::uuid
	  AND ml.direction = $4
	  AND ml.created_at BETWEEN $2 AND $3
	GROUP BY EXTRACT(HOUR FROM ml.created_at)
	ORDER BY hour ASC`

// $4 is the direction, $5 the caller's limit.
const incomingIntentCountsSQL = `
	SELECT
		ml.ai_intent AS intent,
		COUNT(*) AS count
	FROM message_logs ml
	INNER JOIN conversations c ON c.id = ml.conversation_id
	WHERE c.merchant_id = $1::uuid
	  AND ml.direction = $4
	  AND ml.ai_intent IS NOT NULL
	  AND ml.created_at BETWEEN $2 AND $3
	GROUP BY ml.ai_intent
	ORDER BY count DESC
	LIMIT $5`
