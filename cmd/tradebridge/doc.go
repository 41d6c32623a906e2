// Command tradebridge runs the marketplace API and its maintenance tasks.
//
//	tradebridge serve             # start the HTTP server
//	tradebridge serve --memory    # start without MongoDB, records kept in process
//	tradebridge migrate           # run pending migrations
//	tradebridge migrate:rollback
//	tradebridge migrate:status
//	tradebridge seed              # create the admin account
//	tradebridge route:list        # list API routes
//
// Configuration comes from config.json, .env and the environment; see the
// config package.
package main
