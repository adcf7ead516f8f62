package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE campaigns (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL,
				graph JSONB NOT NULL DEFAULT '{"nodes":[],"edges":[]}',
				connection_id VARCHAR(255),
				scheduled_date TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_campaigns_status ON campaigns(status);
			CREATE INDEX idx_campaigns_created_at ON campaigns(created_at);
			CREATE INDEX idx_campaigns_scheduled_date ON campaigns(scheduled_date);

			CREATE TABLE sessions (
				id VARCHAR(255) NOT NULL,
				campaign_id UUID NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
				contact_name VARCHAR(255) NOT NULL DEFAULT '',
				contact_phone VARCHAR(64) NOT NULL DEFAULT '',
				status VARCHAR(50) NOT NULL,
				visited_nodes JSONB NOT NULL DEFAULT '{}',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				PRIMARY KEY (campaign_id, id)
			);

			CREATE INDEX idx_sessions_status ON sessions(status);

			CREATE TABLE connections (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT 'connected'
			);

			CREATE TABLE categories (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				contact_count INT NOT NULL DEFAULT 0
			);
		`,
	}
}
