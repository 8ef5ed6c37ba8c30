package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create connectors table
			CREATE TABLE connectors (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				icon VARCHAR(255) NOT NULL DEFAULT '',
				properties JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			-- Create connections table
			CREATE TABLE connections (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				tags JSONB,
				connector_id VARCHAR(255) NOT NULL,
				connector JSONB,
				icon VARCHAR(255) NOT NULL DEFAULT '',
				configured_properties JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_connections_connector_id ON connections(connector_id);
			CREATE INDEX idx_connections_created_at ON connections(created_at);
		`,
	}
}
