package testutil

// PlaylistURL is the playlist location the fixtures are registered under.
const PlaylistURL = "https://playlists.example/starshare.m3u"

// SamplePlaylist covers every inclusion path, both exclusion outcomes, a
// duplicate origin URL and the usual malformed lines. Built with no channel
// limit it yields, in order:
//
//	TM: Sun TV HD              priority 1  Entertainment HD
//	KTV Movies                 priority 2  Movies SD
//	Thanthi News               priority 3  News SD
//	CRIC || Star Sports 1 FHD  priority 5  Cricket FHD
//	TA: Isai Aruvi             priority 8  Music SD
//	24/7 Tamil Comedy          priority 9  Entertainment SD
const SamplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="sun.in" tvg-name="TM: Sun TV HD" tvg-logo="https://logos.example/sun.png" group-title="FREE LIV TV || TAMIL",TM: Sun TV HD
https://streams.example/sun/index.m3u8

#EXTINF:-1 tvg-name="CRIC || Star Sports 1 FHD" group-title="FREE LIV TV || CRICKET",CRIC || Star Sports 1 FHD
https://streams.example/ss1/index.m3u8
#EXTINF:-1 tvg-name="KTV Movies" group-title="FREE LIV TV || TAMIL MOVIES",KTV Movies
https://streams.example/ktv/index.m3u8
#EXTINF:-1 tvg-name="Hindi Movies" group-title="HINDI",Hindi Movies
https://streams.example/hindi/index.m3u8
#EXTINF:-1 tvg-name="TM: Telugu Hits" group-title="OTHER",TM: Telugu Hits
https://streams.example/telugu/index.m3u8
#EXTINF:-1 tvg-name="Thanthi News" group-title="FREE LIV TV || TAMIL NEWS",Thanthi News
https://streams.example/thanthi/index.m3u8
#EXTINF:-1 group-title="FREE LIV TV || TAMIL",No Name Attribute
https://streams.example/noname/index.m3u8
#EXTINF:-1 tvg-name="Orphan" group-title="FREE LIV TV || TAMIL",Orphan
#EXTINF:-1 tvg-name="TA: Isai Aruvi" group-title="MUSIC",TA: Isai Aruvi
https://streams.example/isai/index.m3u8
#EXTINF:-1 tvg-name="TM: Sun TV HD Backup" group-title="OTHER",TM: Sun TV HD Backup
https://streams.example/sun/index.m3u8
#EXTINF:-1 tvg-name="24/7 Tamil Comedy" group-title="24/7",24/7 Tamil Comedy
https://streams.example/comedy/index.m3u8
`

// CricketPlaylist holds a single channel that must be included as Cricket
// with priority 5.
const CricketPlaylist = `#EXTM3U
#EXTINF:-1 tvg-name="CRIC || Star Sports" group-title="FREE LIV TV || CRICKET",CRIC || Star Sports
https://x/live.m3u8
`

// MasterManifest lists five variants in unsorted bandwidth order.
const MasterManifest = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=2500,RESOLUTION=1920x1080,CODECS="avc1.640028,mp4a.40.2"
v2500/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=500,RESOLUTION=426x240,CODECS="avc1.42e00a,mp4a.40.2"
v500/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=1500,RESOLUTION=1280x720,CODECS="avc1.4d401f,mp4a.40.2"
v1500/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=1000,RESOLUTION=854x480,CODECS="avc1.4d401e,mp4a.40.2"
v1000/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2000,RESOLUTION=1600x900,CODECS="avc1.640020,mp4a.40.2"
v2000/index.m3u8
`

// MediaManifest is a media playlist with a long target and one long segment.
const MediaManifest = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:12
#EXT-X-MEDIA-SEQUENCE:42
#EXTINF:10.5,
seg1.ts
#EXTINF:3.2,
seg2.ts
`
